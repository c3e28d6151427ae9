package engine

import "retag/internal/parser"

// Event is one item on a Stream: a RecordEvent, FailureEvent, ProgressEvent
// or CompletionEvent.
type Event interface {
	event()
}

// RecordEvent carries a successfully decoded line.
type RecordEvent struct {
	Index  int // zero-based position of the line in the batch
	Record *parser.Record
}

// Failure is a line that could not be decoded and the short reason why.
type Failure struct {
	Line   string
	Reason string
}

// FailureEvent carries a line that could not be decoded.
type FailureEvent struct {
	Index   int
	Failure Failure
}

// ProgressEvent follows every line's outcome. Completed grows by exactly one.
type ProgressEvent struct {
	Completed int
	Total     int
}

// CompletionEvent is always the last event of a batch.
type CompletionEvent struct {
	Total int
}

func (RecordEvent) event()     {}
func (FailureEvent) event()    {}
func (ProgressEvent) event()   {}
func (CompletionEvent) event() {}
