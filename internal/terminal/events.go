package terminal

// EventType identifies a session event.
type EventType string

const (
	// EventOutput carries a chunk of raw PTY output.
	EventOutput EventType = "output"

	// EventCwdChanged fires when an OSC-7 report names a new directory.
	EventCwdChanged EventType = "cwd-changed"

	// EventAgentStatus reports agent typing state transitions
	// ("typing", "interrupted", "idle").
	EventAgentStatus EventType = "ai-status"

	// EventExit is the terminal event emitted once when the PTY child
	// exits.
	EventExit EventType = "exit"
)

// Agent status values carried by EventAgentStatus.
const (
	AgentStatusTyping      = "typing"
	AgentStatusInterrupted = "interrupted"
	AgentStatusIdle        = "idle"
)

// Event is a session notification. Events are emitted in observation
// order; subscribers must drain promptly as slow subscribers drop
// events rather than block the session owner.
type Event struct {
	Type EventType

	// Output is set for EventOutput.
	Output []byte

	// Cwd is set for EventCwdChanged.
	Cwd string

	// Status is set for EventAgentStatus.
	Status string

	// ExitCode and Signal are set for EventExit. ExitCode is -1 when
	// the child was killed by a signal.
	ExitCode int
	Signal   string
}
