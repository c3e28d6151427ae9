package model

import (
	"time"
)

// BatchRun is the journal entry of one processed batch. Only tallies are
// kept, never links or decoded records.
type BatchRun struct {
	ID        uint   `gorm:"primaryKey"`
	Tag       string
	Sources   string // comma separated source names
	Total     int
	Succeeded int
	Failed    int
	StartedAt time.Time `gorm:"index"`
	Duration  time.Duration

	Protocols []RunProtocol `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// RunProtocol counts successful records of one protocol within a run.
type RunProtocol struct {
	RunID    uint   `gorm:"primaryKey;autoIncrement:false"` // Composite Key Part 1
	Protocol string `gorm:"primaryKey"`                     // Composite Key Part 2
	Count    int
}
