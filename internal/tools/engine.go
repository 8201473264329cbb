package tools

import (
	"context"
	"fmt"
	"strings"

	"skysolve/internal/execute"
)

// Engine invokes the solver backend. The batch-wide argument prefix is
// built once, before the input loop; every Solve call works on a fresh
// copy so nothing appended for one input can leak into the next.
type Engine struct {
	run    runner
	prefix []string // pre-quoted tokens
}

// NewEngine resolves the engine executable and captures the batch-wide
// prefix. The engine is required: a resolution failure aborts startup.
func NewEngine(run runner, ts *Toolset, name, configFile string, verbose bool) (*Engine, error) {
	exe, err := ts.Path(name)
	if err != nil {
		return nil, err
	}
	prefix := []string{execute.Quote(exe)}
	if verbose {
		prefix = append(prefix, "--verbose")
	}
	if configFile != "" {
		prefix = append(prefix, "--config", execute.Quote(configFile))
	}
	return &Engine{run: run, prefix: prefix}, nil
}

func (e *Engine) command(sourceList string) string {
	args := append([]string(nil), e.prefix...)
	args = append(args, execute.Quote(sourceList))
	return strings.Join(args, " ")
}

// Solve runs the engine against the canonical coordinate list. Output is
// captured, not streamed; failures carry the full command line.
func (e *Engine) Solve(ctx context.Context, sourceList string) error {
	cmdline := e.command(sourceList)
	if _, err := e.run.RunCapture(ctx, cmdline); err != nil {
		return fmt.Errorf("solver backend failed: %w", err)
	}
	return nil
}
