package engine

import "errors"

var (
	// ErrNoEntry means the flow has no zero-in-degree node to start from.
	ErrNoEntry = errors.New("engine: flow has no entry node")

	// ErrTimedOut marks a shell node that exceeded its timeout.
	ErrTimedOut = errors.New("engine: timed-out")

	// ErrPathEscape marks a file node whose resolved path is outside
	// the user home and the process working directory.
	ErrPathEscape = errors.New("engine: path-escape")

	// ErrNotFound marks a file read against a missing path.
	ErrNotFound = errors.New("engine: not-found")

	// ErrLLMUnavailable marks an ai node run with no bound capability.
	ErrLLMUnavailable = errors.New("engine: llm-unavailable")

	// ErrExecutionNotFound is returned by Cancel for unknown ids.
	ErrExecutionNotFound = errors.New("engine: execution not found")
)
