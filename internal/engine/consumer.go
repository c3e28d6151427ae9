package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"retag/internal/parser"
)

// DefaultPollInterval is used when Consumer.Interval is zero.
const DefaultPollInterval = 100 * time.Millisecond

// ErrIncomplete is returned when a Stream closes without a CompletionEvent.
var ErrIncomplete = errors.New("stream closed before batch completion")

// Results aggregates one batch. Records are keyed by consumer-assigned ids,
// which follow input order.
type Results struct {
	Records   map[int]*parser.Record
	Failures  []Failure
	Total     int
	Succeeded int
	Failed    int

	nextID int
}

func newResults() *Results {
	return &Results{Records: make(map[int]*parser.Record)}
}

// Ordered returns the records sorted by id.
func (r *Results) Ordered() []*parser.Record {
	ids := make([]int, 0, len(r.Records))
	for id := range r.Records {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*parser.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.Records[id])
	}
	return out
}

// Consumer polls a Stream on a ticker and applies the buffered events.
// The callbacks are optional and run on the consumer's goroutine.
type Consumer struct {
	Interval   time.Duration
	OnRecord   func(id int, rec *parser.Record)
	OnFailure  func(f Failure)
	OnProgress func(p ProgressEvent)
}

// Run drains s until the CompletionEvent. Cancelling ctx stops polling;
// whatever the producer still sends is discarded in the background so the
// batch can finish and the Stream gets closed.
func (c *Consumer) Run(ctx context.Context, s *Stream) (*Results, error) {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	res := newResults()
	for {
		events, closed := s.Drain()
		for _, ev := range events {
			if c.apply(res, ev) {
				return res, nil
			}
		}
		if closed {
			return res, ErrIncomplete
		}

		select {
		case <-ctx.Done():
			go s.discard()
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

// apply records ev and reports whether the batch is complete.
func (c *Consumer) apply(res *Results, ev Event) bool {
	switch e := ev.(type) {
	case RecordEvent:
		id := res.nextID
		res.nextID++
		res.Records[id] = e.Record
		res.Succeeded++
		if c.OnRecord != nil {
			c.OnRecord(id, e.Record)
		}
	case FailureEvent:
		res.Failures = append(res.Failures, e.Failure)
		res.Failed++
		if c.OnFailure != nil {
			c.OnFailure(e.Failure)
		}
	case ProgressEvent:
		if c.OnProgress != nil {
			c.OnProgress(e)
		}
	case CompletionEvent:
		res.Total = e.Total
		return true
	}
	return false
}
