package probe

import (
	"time"

	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/terminal"
)

// Snapshot is an immutable record of the environment at one instant.
// Produced by a Prober, consumed by the intent classifier and strategy
// selector; never mutated after construction.
type Snapshot struct {
	Environment Environment       `json:"environment"`
	Toolchain   map[string]string `json:"toolchain"`
	Project     Project           `json:"project"`
	State       State             `json:"state"`
	Git         GitState          `json:"git"`
	Files       []ConfigFile      `json:"files"`

	// Completeness scores how much of the snapshot was gathered, in [0, 1].
	Completeness float64 `json:"completeness"`

	// GatherDurationMS is how long the probe took.
	GatherDurationMS int64 `json:"gatherDurationMs"`

	TakenAt time.Time `json:"takenAt"`
}

// Environment describes the host.
type Environment struct {
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Shell    string `json:"shell"`
	Cwd      string `json:"cwd"`
	User     string `json:"user"`
	Hostname string `json:"hostname"`
}

// Project describes the detected project in the working directory.
type Project struct {
	Kind            patterns.ProjectKind `json:"kind"`
	PackageManager  string               `json:"packageManager,omitempty"`
	Framework       string               `json:"framework,omitempty"`
	PrimaryLanguage string               `json:"primaryLanguage,omitempty"`
}

// State carries recent session activity supplied by the caller.
type State struct {
	RecentCommands []terminal.CommandRecord `json:"recentCommands,omitempty"`
	RecentErrors   []ObservedError          `json:"recentErrors,omitempty"`
}

// ObservedError is a recent error with the pattern names it matched.
type ObservedError struct {
	Message  string    `json:"message"`
	Patterns []string  `json:"patterns,omitempty"`
	At       time.Time `json:"at"`
}

// GitState summarizes the repository at cwd, zero-valued outside a repo.
type GitState struct {
	IsRepo     bool   `json:"isRepo"`
	Branch     string `json:"branch,omitempty"`
	HasChanges bool   `json:"hasChanges"`
	Staged     int    `json:"staged"`
	Unstaged   int    `json:"unstaged"`
	Untracked  int    `json:"untracked"`
	HasRemote  bool   `json:"hasRemote"`
}

// ConfigFile is a recognized configuration file with truncated content.
type ConfigFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`

	// Truncated is true when Content was cut at the cap.
	Truncated bool `json:"truncated,omitempty"`
}
