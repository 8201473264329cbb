package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Outcome reports how a command line finished.
type Outcome struct {
	ExitCode  int
	Cancelled bool     // terminated by SIGTERM, i.e. user cancellation
	Lines     []string // captured stdout lines, when capturing
}

// ExitError is returned when a command line ran but did not succeed.
type ExitError struct {
	Cmd       string
	ExitCode  int
	Cancelled bool
	Stderr    string
}

func (e *ExitError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("command was cancelled: %s", e.Cmd)
	}
	return fmt.Sprintf("command exited with status %d: %s", e.ExitCode, e.Cmd)
}

// IsCancelled reports whether err stems from a SIGTERM-terminated command.
func IsCancelled(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Cancelled
}

// Runner executes rendered command lines through the shell, one at a
// time. Every invocation is synchronous; there is no timeout.
type Runner struct {
	Log   *slog.Logger
	Shell string // defaults to /bin/sh
}

func (r *Runner) shell() string {
	if r.Shell != "" {
		return r.Shell
	}
	return "/bin/sh"
}

// Run executes cmdline with stdout/stderr passed through to the caller's
// terminal. The returned error is an *ExitError for nonzero exits and
// signal terminations.
func (r *Runner) Run(ctx context.Context, cmdline string) (Outcome, error) {
	return r.run(ctx, cmdline, false)
}

// RunCapture executes cmdline capturing stdout as discrete lines and
// stderr into the error; nothing is streamed to the terminal.
func (r *Runner) RunCapture(ctx context.Context, cmdline string) (Outcome, error) {
	return r.run(ctx, cmdline, true)
}

func (r *Runner) run(ctx context.Context, cmdline string, capture bool) (Outcome, error) {
	if r.Log != nil {
		r.Log.Debug("running command", "cmd", cmdline)
	}

	cmd := exec.CommandContext(ctx, r.shell(), "-c", cmdline)
	var stdout, stderr bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()

	var out Outcome
	if capture {
		raw := strings.TrimRight(stdout.String(), "\n")
		if raw != "" {
			out.Lines = strings.Split(raw, "\n")
		}
	}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return out, fmt.Errorf("failed to run command %q: %w", cmdline, err)
	}

	ee := &ExitError{Cmd: cmdline, Stderr: stderr.String()}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		ee.ExitCode = -1
		ee.Cancelled = ws.Signal() == syscall.SIGTERM
	} else {
		ee.ExitCode = exitErr.ExitCode()
	}
	out.ExitCode = ee.ExitCode
	out.Cancelled = ee.Cancelled
	return out, ee
}
