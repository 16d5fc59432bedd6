// Package terminal implements the session arbiter: a single PTY shared
// between a human typist and an autonomous agent, with strict writer
// exclusivity, OSC-7 based working directory tracking and shell prompt
// detection.
package terminal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/stringutil"
)

const (
	// promptPollInterval is the agent wait poll period.
	promptPollInterval = 50 * time.Millisecond

	// promptSettleDelay is waited after a fresh prompt before the agent
	// wait returns, so trailing output lands in the ring.
	promptSettleDelay = 50 * time.Millisecond

	// promptTailMinWait guards the tail-shape fallback: the ring tail
	// matching a prompt shape only completes the wait once this much
	// time has passed since the CR was sent.
	promptTailMinWait = 500 * time.Millisecond

	// promptTailBytes is how much of the ring tail is examined for a
	// prompt shape.
	promptTailBytes = 100

	// defaultAgentTimeout bounds WriteAgent prompt waits when the
	// caller does not set one.
	defaultAgentTimeout = 30 * time.Second

	// maxRecentCommands bounds the retained command history.
	maxRecentCommands = 20

	ptyReadBufSize = 4096

	etx = 0x03
)

// Options configures Open.
type Options struct {
	// Shell is the shell binary to spawn. Defaults to $SHELL, then /bin/sh.
	Shell string

	// Dir is the starting working directory. Defaults to the process cwd.
	Dir string

	// Cols and Rows set the initial terminal size.
	Cols, Rows uint16

	// RingCap overrides the output ring capacity (bytes).
	RingCap int
}

// AgentWriteOptions controls a WriteAgent call.
type AgentWriteOptions struct {
	// TypingDelay is slept between characters. Character-wise typing is
	// what makes human preemption physically possible.
	TypingDelay time.Duration

	// Execute appends CR after the command.
	Execute bool

	// WaitForCompletion blocks until the next prompt (or Timeout).
	WaitForCompletion bool

	// Timeout bounds the prompt wait. Zero means defaultAgentTimeout.
	Timeout time.Duration
}

// DefaultAgentWriteOptions returns the options used for a plain
// "type, run, and report" call.
func DefaultAgentWriteOptions() AgentWriteOptions {
	return AgentWriteOptions{
		TypingDelay:       10 * time.Millisecond,
		Execute:           true,
		WaitForCompletion: true,
		Timeout:           defaultAgentTimeout,
	}
}

// AgentResult reports the outcome of a WriteAgent call.
type AgentResult struct {
	// Interrupted is true when the human preempted the agent.
	Interrupted bool

	// TimedOut is true when the prompt wait elapsed without a prompt.
	// The call still returns normally with the output accumulated so
	// far; the command may still be running in the shell.
	TimedOut bool

	Duration time.Duration
	Output   string
	Cwd      string
}

// Session exclusively owns one PTY child process, its output ring and
// the arbitration state between the human and the agent. All mutation
// of cwd, agentActive and the ring happens under the session's lock;
// subscribers receive snapshot copies.
type Session struct {
	ID     string
	Shell  string
	Family ShellFamily

	mu             sync.Mutex
	ptmx           *os.File
	cmd            *exec.Cmd
	ring           *ringBuffer
	osc7           osc7Scanner
	cwd            string
	agentActive    bool
	agentInterrupt chan struct{}
	lastPromptAt   time.Time
	promptSeq      uint64
	closed         bool
	subscribers    map[int]chan Event
	nextSubID      int
	history        commandHistory
	recent         []CommandRecord
}

// Open spawns the shell on a fresh PTY, installs the shell-integration
// preamble and starts streaming output. The preamble makes the shell
// emit OSC-7 before each prompt; the screen is cleared right after so
// the setup lines stay invisible.
func Open(ctx context.Context, opts Options) (*Session, error) {
	shell := opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	dir := opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}

	cmd := exec.Command(shell)
	cmd.Dir = dir
	cmd.Env = sessionEnv()

	cols, rows := opts.Cols, opts.Rows
	if cols == 0 {
		cols = 80
	}
	if rows == 0 {
		rows = 24
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawnFailed, shell, err)
	}

	s := &Session{
		ID:          uuid.New().String(),
		Shell:       shell,
		Family:      DetectShellFamily(shell),
		ptmx:        ptmx,
		cmd:         cmd,
		ring:        newRingBuffer(opts.RingCap, opts.RingCap/2),
		cwd:         dir,
		subscribers: make(map[int]chan Event),
	}

	if preamble := integrationPreamble(s.Family); preamble != "" {
		if _, err := ptmx.Write([]byte(preamble)); err != nil {
			logger.Warn(ctx, "Shell integration preamble failed", "err", err)
		}
	} else {
		logger.Info(ctx, "Unknown shell family, cwd tracking degraded", "shell", shell)
	}

	go s.readLoop()
	go s.waitLoop()

	logger.Info(ctx, "Session opened", "session", s.ID, "shell", shell, "dir", dir)
	return s, nil
}

// sessionEnv builds the child environment: TERM and COLORTERM are
// forced, LANG/LC_ALL pass through with the rest.
func sessionEnv() []string {
	env := os.Environ()
	out := env[:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") || strings.HasPrefix(kv, "COLORTERM=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "TERM=xterm-256color", "COLORTERM=truecolor")
}

// readLoop streams PTY output into the processing pipeline.
func (s *Session) readLoop() {
	buf := make([]byte, ptyReadBufSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.handleChunk(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the child and emits the terminal exit event.
func (s *Session) waitLoop() {
	err := s.cmd.Wait()

	exitCode := 0
	signal := ""
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(interface{ Signaled() bool }); ok && ws.Signaled() {
			signal = exitErr.String()
		}
	} else if err != nil {
		exitCode = -1
	}

	s.mu.Lock()
	s.closed = true
	if s.agentActive {
		s.agentActive = false
		if s.agentInterrupt != nil {
			close(s.agentInterrupt)
			s.agentInterrupt = nil
		}
	}
	_ = s.ptmx.Close()
	s.mu.Unlock()

	s.emit(Event{Type: EventExit, ExitCode: exitCode, Signal: signal})
}

// handleChunk runs the per-chunk output pipeline: ring append,
// subscriber emit, OSC-7 scan, prompt-shape scan.
func (s *Session) handleChunk(p []byte) {
	chunk := make([]byte, len(p))
	copy(chunk, p)

	var events []Event

	s.mu.Lock()
	s.ring.Write(chunk)
	events = append(events, Event{Type: EventOutput, Output: chunk})

	for _, path := range s.osc7.Scan(chunk) {
		if path != s.cwd {
			s.cwd = path
			events = append(events, Event{Type: EventCwdChanged, Cwd: path})
		}
	}

	tail := stringutil.StripANSI(string(s.ring.Tail(promptTailBytes)))
	if patterns.MatchesPromptShape(tail) {
		s.lastPromptAt = time.Now()
		s.promptSeq++
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.emit(ev)
	}
}

// WriteUser delivers human input to the PTY. If an agent write is in
// flight it is aborted first: ETX is sent to the PTY before the user
// bytes, preserving writer exclusivity with the human always winning.
func (s *Session) WriteUser(p []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	interrupted := s.interruptLocked()

	for _, line := range s.history.Feed(p) {
		s.recordCommandLocked(line, -1)
	}

	_, err := s.ptmx.Write(p)
	s.mu.Unlock()

	if interrupted {
		s.emit(Event{Type: EventAgentStatus, Status: AgentStatusInterrupted})
	}
	if err != nil {
		return ErrClosed
	}
	return nil
}

// InterruptAgent aborts any in-flight agent write. Idempotent.
func (s *Session) InterruptAgent() {
	s.mu.Lock()
	interrupted := s.interruptLocked()
	s.mu.Unlock()

	if interrupted {
		s.emit(Event{Type: EventAgentStatus, Status: AgentStatusInterrupted})
	}
}

// interruptLocked clears agentActive and sends ETX. Returns true when
// an agent was actually interrupted. Caller holds s.mu.
func (s *Session) interruptLocked() bool {
	if !s.agentActive {
		return false
	}
	s.agentActive = false
	if s.agentInterrupt != nil {
		close(s.agentInterrupt)
		s.agentInterrupt = nil
	}
	_, _ = s.ptmx.Write([]byte{etx})
	return true
}

// WriteAgent types the command on behalf of the agent, optionally
// executes it and waits for the next shell prompt. At most one agent
// write may be in flight per session; concurrent calls fail with
// ErrBusy. On timeout the call returns normally with TimedOut set and
// the output accumulated so far.
func (s *Session) WriteAgent(ctx context.Context, command string, opts AgentWriteOptions) (AgentResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultAgentTimeout
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return AgentResult{}, ErrClosed
	}
	if s.agentActive {
		s.mu.Unlock()
		return AgentResult{}, ErrBusy
	}
	s.agentActive = true
	intr := make(chan struct{})
	s.agentInterrupt = intr
	startMark := s.ring.TotalWritten()
	s.mu.Unlock()

	s.emit(Event{Type: EventAgentStatus, Status: AgentStatusTyping})

	started := time.Now()
	result := func(interrupted, timedOut bool) AgentResult {
		s.mu.Lock()
		out := string(s.ring.Since(startMark))
		cwd := s.cwd
		// Only clear the flag if this call still owns it; a human
		// preemption already cleared it.
		if s.agentInterrupt == intr {
			s.agentActive = false
			s.agentInterrupt = nil
		}
		s.mu.Unlock()

		if !interrupted {
			s.emit(Event{Type: EventAgentStatus, Status: AgentStatusIdle})
		}
		return AgentResult{
			Interrupted: interrupted,
			TimedOut:    timedOut,
			Duration:    time.Since(started),
			Output:      out,
			Cwd:         cwd,
		}
	}

	// Type character by character so WriteUser can preempt mid-command.
	for _, r := range command {
		select {
		case <-intr:
			return result(true, false), nil
		case <-ctx.Done():
			s.InterruptAgent()
			return result(true, false), ctx.Err()
		default:
		}

		s.mu.Lock()
		closed := s.closed
		var err error
		if !closed {
			_, err = s.ptmx.Write([]byte(string(r)))
		}
		s.mu.Unlock()
		if closed || err != nil {
			return result(false, false), ErrClosed
		}

		if opts.TypingDelay > 0 {
			time.Sleep(opts.TypingDelay)
		}
	}

	if !opts.Execute {
		return result(false, false), nil
	}

	s.mu.Lock()
	seqAtCR := s.promptSeq
	closed := s.closed
	var err error
	if !closed {
		_, err = s.ptmx.Write([]byte{'\r'})
	}
	s.recordCommandLocked(command, -1)
	s.mu.Unlock()
	if closed || err != nil {
		return result(false, false), ErrClosed
	}
	crSentAt := time.Now()

	if !opts.WaitForCompletion {
		return result(false, false), nil
	}

	for {
		select {
		case <-intr:
			return result(true, false), nil
		case <-ctx.Done():
			s.InterruptAgent()
			return result(true, false), ctx.Err()
		case <-time.After(promptPollInterval):
		}

		s.mu.Lock()
		seq := s.promptSeq
		closed := s.closed
		tail := stringutil.StripANSI(string(s.ring.Tail(promptTailBytes)))
		s.mu.Unlock()

		if closed {
			return result(false, false), ErrClosed
		}
		if seq > seqAtCR {
			time.Sleep(promptSettleDelay)
			return result(false, false), nil
		}
		if time.Since(crSentAt) >= promptTailMinWait && patterns.MatchesPromptShape(tail) {
			return result(false, false), nil
		}
		if time.Since(crSentAt) >= timeout {
			return result(false, true), nil
		}
	}
}

// Resize updates the PTY size. Best effort; races with child exit are
// swallowed.
func (s *Session) Resize(cols, rows uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	_ = pty.Setsize(s.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
}

// OutputSince returns the last maxLines lines of the output ring.
func (s *Session) OutputSince(maxLines int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.TailLines(maxLines)
}

// Cwd returns the working directory last learned from shell
// integration. When shell detection failed at open time this is the
// last-known value (initially the starting directory).
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// LastPromptAt returns when a prompt shape was last observed.
func (s *Session) LastPromptAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPromptAt
}

// AgentActive reports whether an agent write is in flight.
func (s *Session) AgentActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentActive
}

// RecentCommands returns the most recent commands observed on the
// session, oldest first.
func (s *Session) RecentCommands() []CommandRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CommandRecord, len(s.recent))
	copy(out, s.recent)
	return out
}

// RecordCommandResult attaches an exit code to the session's command
// history; used by callers (such as the workflow engine) that learn
// exit codes out of band.
func (s *Session) RecordCommandResult(command string, exitCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.recent) - 1; i >= 0; i-- {
		if s.recent[i].Command == command && s.recent[i].ExitCode == -1 {
			s.recent[i].ExitCode = exitCode
			return
		}
	}
	s.recordCommandLocked(command, exitCode)
}

func (s *Session) recordCommandLocked(command string, exitCode int) {
	s.recent = append(s.recent, CommandRecord{Command: command, ExitCode: exitCode, At: time.Now()})
	if len(s.recent) > maxRecentCommands {
		s.recent = s.recent[len(s.recent)-maxRecentCommands:]
	}
}

// Subscribe registers an event channel. The returned func removes the
// subscription. Events are dropped rather than blocking the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	subs := make([]chan Event, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close tears the session down: the PTY is closed and the child
// killed. Idempotent; the exit event is emitted by the reaper.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	_ = s.ptmx.Close()
	proc := s.cmd.Process
	s.mu.Unlock()

	if proc != nil {
		_ = proc.Kill()
	}
}
