// Package config reads and merges termai configuration from a YAML
// file, environment variables, and an optional .env file.
package config

import (
	"path/filepath"
	"time"
)

// Config is the fully resolved application configuration.
type Config struct {
	Global   Global
	Paths    Paths
	Terminal Terminal
	Intent   Intent
	LLM      LLM

	// Warnings collected during resolution, e.g. legacy path use.
	Warnings []string
}

// Global holds settings that cut across components.
type Global struct {
	Debug     bool
	LogFormat string
	Quiet     bool

	// LaunchCwd is the directory new sessions start in. It comes from
	// TERMAI_LAUNCH_CWD and falls back to the process working
	// directory.
	LaunchCwd string

	ConfigPath string
}

// Paths holds the resolved directory layout.
type Paths struct {
	// ConfigDir is the primary configuration directory.
	ConfigDir string
	// DataDir is the root for flows/ and executions/.
	DataDir string
	// LogDir is where application logs are written.
	LogDir string
}

// Terminal configures new PTY sessions.
type Terminal struct {
	// Shell overrides $SHELL when set.
	Shell string
	Cols  uint16
	Rows  uint16

	// AgentTimeout bounds writeAgent prompt waits.
	AgentTimeout time.Duration
}

// Intent configures the classifier.
type Intent struct {
	// RefineThreshold is the confidence below which the optional LLM
	// refinement runs.
	RefineThreshold float64
}

// LLM names the external capability; empty provider disables AI nodes
// and refinement.
type LLM struct {
	Provider string
	Model    string
}

// FlowsDir returns the directory flows are stored under.
func (c *Config) FlowsDir() string {
	return filepath.Join(c.Paths.DataDir, "flows")
}

// ExecutionsDir returns the directory execution records are stored
// under.
func (c *Config) ExecutionsDir() string {
	return filepath.Join(c.Paths.DataDir, "executions")
}

// definition mirrors the raw on-disk configuration before validation.
type definition struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"logFormat"`
	Quiet     bool   `mapstructure:"quiet"`

	Paths *pathsDef `mapstructure:"paths"`

	Terminal *terminalDef `mapstructure:"terminal"`
	Intent   *intentDef   `mapstructure:"intent"`
	LLM      *llmDef      `mapstructure:"llm"`
}

type pathsDef struct {
	DataDir string `mapstructure:"dataDir"`
	LogDir  string `mapstructure:"logDir"`
}

type terminalDef struct {
	Shell               string `mapstructure:"shell"`
	Cols                uint16 `mapstructure:"cols"`
	Rows                uint16 `mapstructure:"rows"`
	AgentTimeoutSeconds int    `mapstructure:"agentTimeoutSeconds"`
}

type intentDef struct {
	RefineThreshold float64 `mapstructure:"refineThreshold"`
}

type llmDef struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}
