package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retag/internal/parser"
)

var batch = []string{
	"vless://id@h.example:443?type=ws#one",
	"http://example.com",
	"trojan://pw@t.example:443#two",
	"https://t.me/proxy?server=1.1.1.1&port=443",
	"https://t.me/proxy?server=1.1.1.1&port=443&secret=abc#tg",
}

func collect(p *Processor, lines []string, tag string) []Event {
	var events []Event
	p.Run(lines, tag, func(ev Event) { events = append(events, ev) })
	return events
}

func TestRunEmitsOneOutcomeAndOneProgressPerLine(t *testing.T) {
	events := collect(NewProcessor(nil, 0), batch, "@new")
	require.Len(t, events, 2*len(batch)+1)

	for i := range batch {
		outcome, progress := events[2*i], events[2*i+1]

		switch e := outcome.(type) {
		case RecordEvent:
			assert.Equal(t, i, e.Index)
		case FailureEvent:
			assert.Equal(t, i, e.Index)
			assert.Equal(t, batch[i], e.Failure.Line)
		default:
			t.Fatalf("event %d: unexpected %T", 2*i, outcome)
		}
		assert.Equal(t, ProgressEvent{Completed: i + 1, Total: len(batch)}, progress)
	}
	assert.Equal(t, CompletionEvent{Total: len(batch)}, events[len(events)-1])
}

func TestRunFailureReasons(t *testing.T) {
	events := collect(NewProcessor(nil, 0), batch, "@new")

	var reasons []string
	for _, ev := range events {
		if f, ok := ev.(FailureEvent); ok {
			reasons = append(reasons, f.Failure.Reason)
		}
	}
	assert.Equal(t, []string{
		"protocol not recognized",
		"incomplete Telegram link (missing server, port or secret)",
	}, reasons)
}

func TestRunEmptyBatch(t *testing.T) {
	events := collect(NewProcessor(nil, 0), nil, "x")
	assert.Equal(t, []Event{CompletionEvent{Total: 0}}, events)
}

func TestRunRecoversFromPanics(t *testing.T) {
	decode := func(line, tag string) (*parser.Record, error) {
		if line == "boom" {
			panic("codec bug")
		}
		return parser.Parse(line, tag)
	}

	events := collect(NewProcessor(decode, 0), []string{"boom", batch[0]}, "t")
	require.Len(t, events, 5)

	fail, ok := events[0].(FailureEvent)
	require.True(t, ok)
	assert.Equal(t, ReasonInternal, fail.Failure.Reason)
	assert.IsType(t, RecordEvent{}, events[2])
}

func TestRunRejectsNilRecord(t *testing.T) {
	decode := func(string, string) (*parser.Record, error) { return nil, nil }
	events := collect(NewProcessor(decode, 0), []string{"x"}, "t")

	fail, ok := events[0].(FailureEvent)
	require.True(t, ok)
	assert.Equal(t, ReasonInternal, fail.Failure.Reason)
}

func TestDescribeIncludesCause(t *testing.T) {
	_, err := parser.Parse("vmess://!!!", "t")
	require.Error(t, err)
	assert.Contains(t, describe(err), "invalid VMESS base64 or JSON payload: ")
	assert.Equal(t, "plain", describe(errors.New("plain")))
}

func TestSubmitPreservesOrder(t *testing.T) {
	s := NewProcessor(nil, 0).Submit(batch, "t")

	var got []Event
	for ev := range s.Events() {
		got = append(got, ev)
	}
	assert.Equal(t, collect(NewProcessor(nil, 0), batch, "t"), got)
}

func TestSubmitWithSmallBuffer(t *testing.T) {
	s := NewProcessor(nil, 1).Submit(batch, "t")
	assert.Equal(t, 1, cap(s.events))

	res, err := (&Consumer{Interval: time.Millisecond}).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, len(batch), res.Total)
}

func TestDrainDoesNotBlock(t *testing.T) {
	s := newStream(4)
	events, closed := s.Drain()
	assert.Empty(t, events)
	assert.False(t, closed)

	s.events <- ProgressEvent{Completed: 1, Total: 1}
	s.events <- CompletionEvent{Total: 1}
	close(s.events)

	events, closed = s.Drain()
	assert.Len(t, events, 2)
	assert.True(t, closed)
}

func TestConsumerAggregates(t *testing.T) {
	var (
		ids      []int
		failures []Failure
		progress []int
	)
	c := &Consumer{
		Interval:   time.Millisecond,
		OnRecord:   func(id int, _ *parser.Record) { ids = append(ids, id) },
		OnFailure:  func(f Failure) { failures = append(failures, f) },
		OnProgress: func(p ProgressEvent) { progress = append(progress, p.Completed) },
	}

	res, err := c.Run(context.Background(), NewProcessor(nil, 0).Submit(batch, "@new"))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, res.Total, res.Succeeded+res.Failed)
	assert.Equal(t, []int{0, 1, 2}, ids)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
	assert.Equal(t, res.Failures, failures)

	ordered := res.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, "vless://id@h.example:443?type=ws#%40new", ordered[0].ModifiedLink)
	assert.Equal(t, parser.Trojan, ordered[1].Protocol)
	assert.Equal(t, parser.Telegram, ordered[2].Protocol)
}

func TestConsumerIncompleteStream(t *testing.T) {
	s := newStream(1)
	s.events <- ProgressEvent{Completed: 1, Total: 2}
	close(s.events)

	_, err := (&Consumer{Interval: time.Millisecond}).Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Consumer{Interval: time.Hour}).Run(ctx, newStream(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelledConsumerLetsProducerFinish(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "trojan://pw@t.example:443#x"
	}
	var decoded atomic.Int32
	p := NewProcessor(func(line, tag string) (*parser.Record, error) {
		decoded.Add(1)
		return parser.Parse(line, tag)
	}, 2)
	s := p.Submit(lines, "t")
	require.Equal(t, 2, cap(s.events))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Consumer{Interval: time.Hour}).Run(ctx, s)
	require.ErrorIs(t, err, context.Canceled)

	assert.Eventually(t, func() bool {
		_, closed := s.Drain()
		return closed
	}, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, len(lines), decoded.Load())
}
