package cli

import (
	"context"
	"io"
	"log/slog"

	"skysolve/internal/config"
	"skysolve/internal/pipeline"
	"skysolve/internal/storage"
)

// solveRunner is what the commands need from the pipeline; tests swap
// in a stub.
type solveRunner interface {
	Solve(ctx context.Context, inputs []string) (pipeline.Stats, error)
	SolveStream(ctx context.Context, in io.Reader) (pipeline.Stats, error)
}

type runnerFactory func(opts pipeline.Options) (solveRunner, error)

// Root wires CLI commands to the solve pipeline.
type Root struct {
	cfg       *config.Config
	log       *slog.Logger
	store     *storage.Store
	newRunner runnerFactory
}

// NewRoot constructs the command wiring.
func NewRoot(cfg *config.Config, logger *slog.Logger, store *storage.Store) *Root {
	r := &Root{
		cfg:   cfg,
		log:   logger,
		store: store,
	}
	r.newRunner = func(opts pipeline.Options) (solveRunner, error) {
		return pipeline.NewRunner(cfg, logger, opts, store)
	}
	return r
}
