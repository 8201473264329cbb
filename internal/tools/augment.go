package tools

import (
	"context"
	"fmt"

	"skysolve/internal/execute"
	"skysolve/internal/naming"
)

// PrepareRequest carries everything the preparer needs to turn an input
// into the canonical coordinate list the engine consumes. Exactly one of
// SourceList and Image is set.
type PrepareRequest struct {
	SourceList string
	Image      string
	Raster     string // temp raster conversion target, image inputs only
	ForcePPM   bool   // request PPM for the raster conversion
	XCol, YCol string
	TempDir    string
	Verbose    bool
	ExtraArgs  []string
	Outputs    naming.OutputSet
}

// Preparer invokes the external augmentation tool. It writes the
// canonical list and arranges for the solved/WCS/match artifacts to be
// produced at the pre-derived paths.
type Preparer struct {
	run   runner
	tools *Toolset
	name  string
}

// NewPreparer builds a preparer over the named executable.
func NewPreparer(run runner, ts *Toolset, name string) *Preparer {
	return &Preparer{run: run, tools: ts, name: name}
}

func prepareCommand(exe string, req PrepareRequest) *execute.Command {
	var args []string
	if req.Verbose {
		args = append(args, "--verbose")
	}
	args = append(args,
		"--out", req.Outputs.Path(naming.RoleSourceList),
		"--match", req.Outputs.Path(naming.RoleMatch),
		"--rdls", req.Outputs.Path(naming.RoleCatalogRDLS),
		"--solved", req.Outputs.Path(naming.RoleSolved),
		"--wcs", req.Outputs.Path(naming.RoleWCS),
	)
	if req.TempDir != "" {
		args = append(args, "--temp-dir", req.TempDir)
	}
	if req.XCol != "" {
		args = append(args, "--x-column", req.XCol)
	}
	if req.YCol != "" {
		args = append(args, "--y-column", req.YCol)
	}
	if req.Image != "" {
		args = append(args, "--image", req.Image)
		if req.Raster != "" {
			args = append(args, "--pnm", req.Raster)
		}
		if req.ForcePPM {
			args = append(args, "--ppm")
		}
	} else {
		args = append(args, "--xylist", req.SourceList)
	}
	args = append(args, req.ExtraArgs...)
	return execute.NewCommand(execute.ProcessSpec{Program: exe, Args: args})
}

// Prepare runs the augmentation step. Any failure is fatal for the run.
func (p *Preparer) Prepare(ctx context.Context, req PrepareRequest) error {
	exe, err := p.tools.Path(p.name)
	if err != nil {
		return err
	}
	cmd := prepareCommand(exe, req)
	if _, err := p.run.Run(ctx, cmd.String()); err != nil {
		return fmt.Errorf("preparing %q failed: %w", req.Outputs.Base, err)
	}
	return nil
}
