// Package journal keeps per-batch tallies in sqlite so `status` can show
// what past runs produced.
package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"retag/internal/db"
	"retag/internal/logger"
	"retag/internal/model"

	"gorm.io/gorm"
)

type Journal struct {
	db *gorm.DB
}

// Open connects to the journal database at path and migrates it.
func Open(path string) (*Journal, error) {
	conn, err := db.Connect(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return New(conn), nil
}

func New(conn *gorm.DB) *Journal {
	return &Journal{db: conn}
}

func (j *Journal) Close() {
	db.Close(j.db)
}

// Entry describes one finished batch.
type Entry struct {
	Tag       string
	Sources   []string
	Total     int
	Succeeded int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
	Protocols map[string]int // successful records per protocol
}

// Record stores e and returns the new run id.
func (j *Journal) Record(e Entry) (uint, error) {
	run := model.BatchRun{
		Tag:       e.Tag,
		Sources:   strings.Join(e.Sources, ","),
		Total:     e.Total,
		Succeeded: e.Succeeded,
		Failed:    e.Failed,
		StartedAt: e.StartedAt,
		Duration:  e.Duration,
	}

	protocols := make([]string, 0, len(e.Protocols))
	for p := range e.Protocols {
		protocols = append(protocols, p)
	}
	sort.Strings(protocols)
	for _, p := range protocols {
		run.Protocols = append(run.Protocols, model.RunProtocol{Protocol: p, Count: e.Protocols[p]})
	}

	if err := j.db.Create(&run).Error; err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	logger.Log.Debugf("Journal: recorded run #%d (%d/%d ok)", run.ID, run.Succeeded, run.Total)
	return run.ID, nil
}

// Recent returns up to limit runs, newest first, with their protocol counts.
func (j *Journal) Recent(limit int) ([]model.BatchRun, error) {
	var runs []model.BatchRun
	q := j.db.Preload("Protocols").Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load runs: %w", err)
	}
	return runs, nil
}

// ProtocolTotal is the sum of one protocol's counts over every stored run.
type ProtocolTotal struct {
	Protocol string
	Count    int
}

func (j *Journal) ProtocolTotals() ([]ProtocolTotal, error) {
	var totals []ProtocolTotal
	err := j.db.Model(&model.RunProtocol{}).
		Select("protocol, SUM(count) as count").
		Group("protocol").
		Order("count DESC").Order("protocol").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum protocols: %w", err)
	}
	return totals, nil
}

// Count returns the number of stored runs.
func (j *Journal) Count() (int64, error) {
	var count int64
	if err := j.db.Model(&model.BatchRun{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Prune keeps the newest limit runs and deletes the rest along with their
// protocol counts. It returns how many runs were removed.
func (j *Journal) Prune(limit int) (int, error) {
	if limit < 0 {
		limit = 0
	}

	count, err := j.Count()
	if err != nil {
		return 0, err
	}
	if count <= int64(limit) {
		return 0, nil
	}

	excess := int(count) - limit
	logger.Log.Infof("✂️  Pruning Journal: Count %d > Limit %d. Removing %d runs...", count, limit, excess)

	// Oldest first
	var toDelete []uint
	err = j.db.Model(&model.BatchRun{}).
		Order("started_at ASC").Order("id ASC").
		Limit(excess).
		Pluck("id", &toDelete).Error
	if err != nil {
		return 0, err
	}

	tx := j.db.Begin()
	if err := tx.Where("run_id IN ?", toDelete).Delete(&model.RunProtocol{}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Delete(&model.BatchRun{}, toDelete).Error; err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return len(toDelete), nil
}
