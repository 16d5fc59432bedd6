package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineSession builds a session with just enough state to drive the
// output pipeline directly, without a PTY behind it.
func pipelineSession(cwd string) *Session {
	return &Session{
		ring:        newRingBuffer(0, 0),
		cwd:         cwd,
		subscribers: make(map[int]chan Event),
	}
}

func drainEvents(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func cwdEvents(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == EventCwdChanged {
			out = append(out, ev)
		}
	}
	return out
}

func TestHandleChunkUpdatesCwd(t *testing.T) {
	s := pipelineSession("/home/dev")
	ch, cancel := s.Subscribe()
	defer cancel()

	s.handleChunk([]byte("\x1b]7;file://host/home/dev/app\x07$ "))

	assert.Equal(t, "/home/dev/app", s.Cwd())

	changed := cwdEvents(drainEvents(ch))
	require.Len(t, changed, 1)
	assert.Equal(t, "/home/dev/app", changed[0].Cwd)
}

func TestHandleChunkDeduplicatesCwdEvents(t *testing.T) {
	s := pipelineSession("/home/dev")
	ch, cancel := s.Subscribe()
	defer cancel()

	// The shell re-reports the same directory before every prompt;
	// only a real change may fire an event.
	report := []byte("\x1b]7;file://host/home/dev/app\x07$ ")
	s.handleChunk(report)
	s.handleChunk(report)
	s.handleChunk(report)

	assert.Equal(t, "/home/dev/app", s.Cwd())
	assert.Len(t, cwdEvents(drainEvents(ch)), 1)
}

func TestHandleChunkCwdAcrossSplitReport(t *testing.T) {
	s := pipelineSession("/home/dev")
	ch, cancel := s.Subscribe()
	defer cancel()

	// An OSC-7 report split across two PTY reads must still land once
	// reassembled.
	s.handleChunk([]byte("\x1b]7;file://host/ho"))
	assert.Equal(t, "/home/dev", s.Cwd())
	assert.Empty(t, cwdEvents(drainEvents(ch)))

	s.handleChunk([]byte("me/dev/deeper\x07"))
	assert.Equal(t, "/home/dev/deeper", s.Cwd())
	assert.Len(t, cwdEvents(drainEvents(ch)), 1)
}

func TestHandleChunkEveryChangeFires(t *testing.T) {
	s := pipelineSession("/")
	ch, cancel := s.Subscribe()
	defer cancel()

	s.handleChunk([]byte("\x1b]7;file://host/a\x07"))
	s.handleChunk([]byte("\x1b]7;file://host/b\x07"))
	s.handleChunk([]byte("\x1b]7;file://host/a\x07"))

	changed := cwdEvents(drainEvents(ch))
	require.Len(t, changed, 3)
	assert.Equal(t, "/a", changed[0].Cwd)
	assert.Equal(t, "/b", changed[1].Cwd)
	assert.Equal(t, "/a", changed[2].Cwd)
	assert.Equal(t, "/a", s.Cwd())
}

func TestHandleChunkEmitsOutput(t *testing.T) {
	s := pipelineSession("/home/dev")
	ch, cancel := s.Subscribe()
	defer cancel()

	s.handleChunk([]byte("hello\r\n"))

	events := drainEvents(ch)
	require.Len(t, events, 1)
	assert.Equal(t, EventOutput, events[0].Type)
	assert.Equal(t, []byte("hello\r\n"), events[0].Output)
}
