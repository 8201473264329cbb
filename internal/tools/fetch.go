package tools

import (
	"context"
	"fmt"
	"strings"

	"skysolve/internal/execute"
)

// RemoteRef reports whether ref is a URL the fetch tools understand.
func RemoteRef(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "ftp://")
}

// Fetcher downloads remote inputs with curl or wget.
type Fetcher struct {
	run     runner
	tools   *Toolset
	curl    string
	wget    string
	UseWget bool
	Quiet   bool
}

// NewFetcher wires a fetcher over the given executables.
func NewFetcher(run runner, ts *Toolset, curl, wget string) *Fetcher {
	return &Fetcher{run: run, tools: ts, curl: curl, wget: wget}
}

func fetchCommand(exe string, wget, quiet bool, url, dest string) *execute.Command {
	var args []string
	if wget {
		if quiet {
			args = append(args, "--quiet")
		}
		args = append(args, "-O", dest, url)
	} else {
		if quiet {
			args = append(args, "--silent")
		}
		args = append(args, "--output", dest, url)
	}
	return execute.NewCommand(execute.ProcessSpec{Program: exe, Args: args})
}

// Fetch downloads url into dest. Any failure, including cancellation, is
// returned to the caller; a failed fetch aborts the whole batch.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	name := f.curl
	if f.UseWget {
		name = f.wget
	}
	exe, err := f.tools.Path(name)
	if err != nil {
		return err
	}
	cmd := fetchCommand(exe, f.UseWget, f.Quiet, url, dest)
	if _, err := f.run.Run(ctx, cmd.String()); err != nil {
		return fmt.Errorf("download of %q failed: %w", url, err)
	}
	return nil
}
