// Package probe gathers one-shot environment snapshots: host facts,
// toolchain versions, project kind, git state and recognized config
// files. A snapshot is gathered fresh per user utterance and handed to
// the intent classifier.
package probe

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/terminal"
)

// Prober gathers environment snapshots. The zero value is usable;
// construct with New to set options.
type Prober struct {
	versionTimeout time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithVersionTimeout overrides the per-binary version query timeout.
func WithVersionTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.versionTimeout = d
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{versionTimeout: defaultVersionTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe gathers a snapshot for the given working directory. Recent
// commands and errors are supplied by the caller (typically from the
// session arbiter); pass nil when unavailable. Individual sections
// failing degrade the completeness score instead of failing the probe.
func (p *Prober) Probe(ctx context.Context, cwd string, commands []terminal.CommandRecord, errOutputs []string) (*Snapshot, error) {
	started := time.Now()

	snap := &Snapshot{
		Environment: p.environment(ctx, cwd),
		Toolchain:   p.toolchain(ctx),
		Project:     DetectProject(cwd),
		Git:         gitState(ctx, cwd),
		Files:       configFiles(cwd),
		TakenAt:     started,
	}

	snap.State = State{
		RecentCommands: commands,
		RecentErrors:   observeErrors(errOutputs),
	}

	snap.Completeness = completeness(snap)
	snap.GatherDurationMS = time.Since(started).Milliseconds()

	logger.Debug(ctx, "Snapshot gathered",
		"cwd", cwd,
		"project", string(snap.Project.Kind),
		"completeness", snap.Completeness,
		"durationMs", snap.GatherDurationMS)
	return snap, nil
}

func (p *Prober) environment(ctx context.Context, cwd string) Environment {
	env := Environment{
		OS:  runtime.GOOS,
		Cwd: cwd,
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		env.Platform = info.Platform
		env.Hostname = info.Hostname
	} else if hn, err := os.Hostname(); err == nil {
		env.Hostname = hn
	}

	if u, err := user.Current(); err == nil {
		env.User = u.Username
	}
	env.Shell = os.Getenv("SHELL")

	return env
}

// observeErrors matches raw error outputs against the error taxonomy.
func observeErrors(outputs []string) []ObservedError {
	var observed []ObservedError
	now := time.Now()
	for _, out := range outputs {
		if out == "" {
			continue
		}
		observed = append(observed, ObservedError{
			Message:  out,
			Patterns: patterns.MatchErrorPatterns(out),
			At:       now,
		})
	}
	return observed
}

// completeness scores snapshot coverage with fixed section weights.
func completeness(s *Snapshot) float64 {
	var score float64
	if s.Environment.Hostname != "" && s.Environment.User != "" {
		score += 0.2
	} else if s.Environment.OS != "" {
		score += 0.1
	}
	if len(s.Toolchain) > 0 {
		score += 0.2
	}
	if s.Project.Kind != patterns.ProjectNone {
		score += 0.2
	}
	if s.Git.IsRepo {
		score += 0.2
	}
	if len(s.Files) > 0 {
		score += 0.1
	}
	if len(s.State.RecentCommands) > 0 || len(s.State.RecentErrors) > 0 {
		score += 0.1
	}
	return score
}
