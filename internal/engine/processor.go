package engine

import (
	"errors"

	"retag/internal/logger"
	"retag/internal/parser"
)

// ReasonInternal is reported for a line whose decoder panicked.
const ReasonInternal = "internal error"

var errInternal = errors.New(ReasonInternal)

// DecodeFunc decodes one line and applies tag to it.
type DecodeFunc func(line, tag string) (*parser.Record, error)

// Processor runs a batch of lines through a decoder, one line at a time.
type Processor struct {
	decode DecodeFunc
	buffer int
}

// NewProcessor returns a Processor using decode, or parser.Parse when decode is nil.
// buffer caps the Stream capacity; zero sizes it to hold the whole batch.
func NewProcessor(decode DecodeFunc, buffer int) *Processor {
	if decode == nil {
		decode = parser.Parse
	}
	return &Processor{decode: decode, buffer: buffer}
}

// Submit starts the batch on its own goroutine and returns the Stream its
// events are delivered on.
func (p *Processor) Submit(lines []string, tag string) *Stream {
	size := 2*len(lines) + 1
	if p.buffer > 0 && p.buffer < size {
		size = p.buffer
	}
	s := newStream(size)

	go func() {
		defer close(s.events)
		p.Run(lines, tag, func(ev Event) { s.events <- ev })
	}()
	return s
}

// Run processes lines in order and synchronously hands every event to emit.
// A bad line never stops the batch.
func (p *Processor) Run(lines []string, tag string, emit func(Event)) {
	total := len(lines)
	logger.Log.Debugf("Processing %d lines with tag %q", total, tag)

	for i, line := range lines {
		rec, err := p.decodeLine(line, tag)
		if err != nil {
			logger.Log.Debugf("Line %d failed: %v", i+1, describe(err))
			emit(FailureEvent{Index: i, Failure: Failure{Line: line, Reason: err.Error()}})
		} else {
			emit(RecordEvent{Index: i, Record: rec})
		}
		emit(ProgressEvent{Completed: i + 1, Total: total})
	}

	emit(CompletionEvent{Total: total})
}

func (p *Processor) decodeLine(line, tag string) (rec *parser.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Decoder panic on %q: %v", line, r)
			rec, err = nil, errInternal
		}
	}()

	rec, err = p.decode(line, tag)
	if err == nil && rec == nil {
		return nil, errInternal
	}
	return rec, err
}

// describe adds the low-level cause of a DecodeError for debug output.
func describe(err error) string {
	var de *parser.DecodeError
	if errors.As(err, &de) && de.Err != nil {
		return de.Error() + ": " + de.Err.Error()
	}
	return err.Error()
}
