package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"mvdan.cc/sh/v3/shell"

	"github.com/termai/termai/internal/flow"
	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/terminal"
)

const (
	defaultShellTimeout = 60 * time.Second
	maxCapturedOutput   = 10 << 20
)

// runShellNode executes the interpolated command, preferring the live
// terminal session so the user sees the command run in their own
// shell. Without a session it falls back to a detached child process.
func (e *Engine) runShellNode(ctx context.Context, data *flow.ShellNodeData, command string, opts ExecuteOptions) (*flow.ShellResult, error) {
	timeout := data.Timeout()
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}

	if opts.Session != nil {
		return runShellViaSession(ctx, opts.Session, command, timeout)
	}
	return runShellDetached(ctx, command, data.Cwd, timeout)
}

// runShellViaSession types the command into the attached PTY and waits
// for the next prompt. A PTY carries no exit status, so ExitCode is 0
// for any command that ran to completion; a wrapper that probes `$?`
// can report the real status later through RecordCommandResult.
func runShellViaSession(ctx context.Context, session TerminalSession, command string, timeout time.Duration) (*flow.ShellResult, error) {
	wopts := terminal.DefaultAgentWriteOptions()
	wopts.Execute = true
	wopts.WaitForCompletion = true
	wopts.Timeout = timeout

	res, err := session.WriteAgent(ctx, command, wopts)
	if err != nil {
		return nil, err
	}

	out := res.Output
	if len(out) > maxCapturedOutput {
		out = out[len(out)-maxCapturedOutput:]
	}
	result := &flow.ShellResult{
		Stdout: out,
		Cwd:    res.Cwd,
	}
	if res.Interrupted {
		// A human preempting the agent is not a node failure; it
		// surfaces as the conventional SIGINT exit code.
		result.ExitCode = 130
		return result, nil
	}
	if res.TimedOut {
		return result, fmt.Errorf("%w after %s", ErrTimedOut, timeout)
	}
	return result, nil
}

func runShellDetached(ctx context.Context, command, cwd string, timeout time.Duration) (*flow.ShellResult, error) {
	fields, err := shell.Fields(command, os.Getenv)
	if err != nil || len(fields) == 0 {
		// Not splittable as a simple command; hand the whole line
		// to the shell instead.
		fields = []string{"/bin/sh", "-c", command}
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, fields[0], fields[1:]...)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = newCappedWriter(&stdout, maxCapturedOutput)
	cmd.Stderr = newCappedWriter(&stderr, maxCapturedOutput)

	runErr := cmd.Run()

	result := &flow.ShellResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Cwd:    cwd,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if cctx.Err() == context.DeadlineExceeded {
		logger.Warn(ctx, "Shell node timed out", "command", command, "timeout", timeout)
		return result, fmt.Errorf("%w after %s", ErrTimedOut, timeout)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("command exited with status %d", result.ExitCode)
		}
		return result, runErr
	}
	return result, nil
}

// cappedWriter keeps writes flowing while retaining at most cap bytes,
// so a chatty command cannot grow a result record without bound.
type cappedWriter struct {
	buf *bytes.Buffer
	cap int
}

func newCappedWriter(buf *bytes.Buffer, capacity int) *cappedWriter {
	return &cappedWriter{buf: buf, cap: capacity}
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if w.buf.Len()+n > w.cap {
		keep := w.cap - w.buf.Len()
		if keep < 0 {
			keep = 0
		}
		p = p[:keep]
	}
	w.buf.Write(p)
	return n, nil
}
