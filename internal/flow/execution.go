package flow

import "time"

// ExecutionStatus is the terminal (or running) status of an execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// NodeStatus is a node result lifecycle state. A result is created
// pending, promoted to running at dispatch, then terminally to one of
// success, failed or skipped.
type NodeStatus string

const (
	NodePending NodeStatus = "pending"
	NodeRunning NodeStatus = "running"
	NodeSuccess NodeStatus = "success"
	NodeFailed  NodeStatus = "failed"
	NodeSkipped NodeStatus = "skipped"
)

// Terminal reports whether s is a terminal node status.
func (s NodeStatus) Terminal() bool {
	return s == NodeSuccess || s == NodeFailed || s == NodeSkipped
}

// Execution is the persistent record of one flow run. The owning
// scheduler is the only writer of Results; node workers return their
// payloads as values.
type Execution struct {
	ID        string                 `json:"id"`
	FlowID    string                 `json:"flowId"`
	SessionID string                 `json:"sessionId,omitempty"`
	StartedAt time.Time              `json:"startedAt"`
	EndedAt   *time.Time             `json:"endedAt,omitempty"`
	Status    ExecutionStatus        `json:"status"`
	Results   map[string]*NodeResult `json:"results"`
	Error     string                 `json:"error,omitempty"`
}

// NodeResult is one node's outcome within an execution. Exactly one of
// the payload pointers is set for a terminal non-skipped result,
// matching the node type.
type NodeResult struct {
	Status     NodeStatus `json:"status"`
	StartedAt  time.Time  `json:"startedAt,omitempty"`
	DurationMS int64      `json:"duration,omitempty"`

	Shell  *ShellResult  `json:"shell,omitempty"`
	AI     *AIResult     `json:"ai,omitempty"`
	Branch *BranchResult `json:"branch,omitempty"`
	File   *FileResult   `json:"file,omitempty"`

	// Error holds the failure message for failed results.
	Error string `json:"error,omitempty"`
}

// ShellResult is the shell node payload.
type ShellResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode"`
	Cwd      string `json:"cwd,omitempty"`
}

// AIResult is the ai node payload.
type AIResult struct {
	Response string `json:"response"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// BranchResult is the branch node payload.
type BranchResult struct {
	ConditionResult bool   `json:"conditionResult"`
	Evaluated       string `json:"evaluated"`
}

// FileResult is the file node payload.
type FileResult struct {
	FilePath     string `json:"filePath"`
	Content      string `json:"content,omitempty"`
	BytesWritten int    `json:"bytesWritten,omitempty"`
	Exists       *bool  `json:"exists,omitempty"`
}
