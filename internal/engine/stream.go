package engine

// Stream is the ordered result channel of one batch. It has a single producer
// and is closed right after the CompletionEvent.
type Stream struct {
	events chan Event
}

func newStream(size int) *Stream {
	return &Stream{events: make(chan Event, size)}
}

// Events exposes the underlying channel for consumers that prefer to range over it.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Drain returns every event buffered right now without blocking.
// closed is true once the producer is done and nothing is left to read.
func (s *Stream) Drain() (events []Event, closed bool) {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return events, true
			}
			events = append(events, ev)
		default:
			return events, false
		}
	}
}

// discard reads and drops events until the producer closes the channel.
func (s *Stream) discard() {
	for range s.events {
	}
}
