package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skysolve/internal/execute"
)

// Classifier decides whether an input file is a source coordinate list
// or an image that still needs source extraction.
type Classifier interface {
	// IsSourceList returns the classification and, when negative, a
	// human-readable reason. The error is non-nil only for conditions
	// that must abort the run (cancellation, missing classifier tool).
	IsSourceList(ctx context.Context, path, xcol, ycol string) (bool, string, error)
}

// ExecClassifier shells out to the suite's list-inspection tool: exit
// status zero means the file is a readable coordinate list with the
// requested columns.
type ExecClassifier struct {
	run   runner
	tools *Toolset
	name  string
}

// NewExecClassifier builds a classifier over the named executable.
func NewExecClassifier(run runner, ts *Toolset, name string) *ExecClassifier {
	return &ExecClassifier{run: run, tools: ts, name: name}
}

func (c *ExecClassifier) IsSourceList(ctx context.Context, path, xcol, ycol string) (bool, string, error) {
	exe, err := c.tools.Path(c.name)
	if err != nil {
		return false, "", err
	}

	var args []string
	if xcol != "" {
		args = append(args, "-X", xcol)
	}
	if ycol != "" {
		args = append(args, "-Y", ycol)
	}
	args = append(args, path)

	cmd := execute.NewCommand(execute.ProcessSpec{Program: exe, Args: args})
	_, err = c.run.RunCapture(ctx, cmd.String())
	if err == nil {
		return true, "", nil
	}
	if execute.IsCancelled(err) {
		return false, "", err
	}

	var ee *execute.ExitError
	if errors.As(err, &ee) {
		return false, classifyReason(ee), nil
	}
	return false, "", fmt.Errorf("classifier failed: %w", err)
}

func classifyReason(ee *execute.ExitError) string {
	for _, line := range strings.Split(ee.Stderr, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return fmt.Sprintf("classifier exited with status %d", ee.ExitCode)
}
