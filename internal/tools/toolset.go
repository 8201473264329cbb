// Package tools builds and runs the external program invocations the
// pipeline is composed of: the coordinate-list preparer, the solver
// engine, the plotting tools, the WCS utilities and the remote fetchers.
// Each tool is an opaque executable with a fixed call contract; nothing
// in here interprets image or table data itself.
package tools

import (
	"context"

	"skysolve/internal/execute"
)

// runner abstracts command execution so tool invocations can be stubbed
// in tests.
type runner interface {
	Run(ctx context.Context, cmdline string) (execute.Outcome, error)
	RunCapture(ctx context.Context, cmdline string) (execute.Outcome, error)
}

// Toolset resolves configured executable names to paths, caching results.
type Toolset struct {
	resolved map[string]string
}

// NewToolset creates an empty resolution cache.
func NewToolset() *Toolset {
	return &Toolset{resolved: make(map[string]string)}
}

// Path resolves name to an executable path, preferring siblings of the
// running binary. Resolution failures are returned to the caller, whose
// stage policy decides whether they are fatal.
func (t *Toolset) Path(name string) (string, error) {
	if p, ok := t.resolved[name]; ok {
		return p, nil
	}
	p, err := execute.FindExecutable(name)
	if err != nil {
		return "", err
	}
	t.resolved[name] = p
	return p, nil
}
