package terminal

import "errors"

var (
	// ErrBusy is returned by WriteAgent when an agent write is already
	// in flight. The caller is expected to retry or abandon.
	ErrBusy = errors.New("terminal: agent write already in progress")

	// ErrClosed is returned when the PTY child has exited and the
	// session no longer accepts writes.
	ErrClosed = errors.New("terminal: session closed")

	// ErrSpawnFailed wraps failures to start the shell child.
	ErrSpawnFailed = errors.New("terminal: failed to spawn shell")
)
