package tools

import (
	"context"
	"fmt"
	"strconv"

	"skysolve/internal/execute"
)

// Plotter composes the result-rendering command pipelines. The first
// stages draw into stdout rasters that are piped onward, so each public
// method renders one complete command chain.
type Plotter struct {
	run        runner
	tools      *Toolset
	plotxy     string
	plotquad   string
	constell   string
	XCol, YCol string
	Verbose    bool
}

// NewPlotter wires a plotter over the named executables.
func NewPlotter(run runner, ts *Toolset, plotxy, plotquad, constellations string) *Plotter {
	return &Plotter{run: run, tools: ts, plotxy: plotxy, plotquad: plotquad, constell: constellations}
}

func (p *Plotter) columnArgs() []string {
	var args []string
	if p.XCol != "" {
		args = append(args, "-X", p.XCol)
	}
	if p.YCol != "" {
		args = append(args, "-Y", p.YCol)
	}
	return args
}

// sourceStage draws the detected sources, optionally over the raster
// background, writing a PPM stream to stdout.
func (p *Plotter) sourceStage(exe, sourceList, raster string, extra ...string) execute.ProcessSpec {
	args := []string{"-i", sourceList}
	if raster != "" {
		args = append(args, "-I", raster)
	}
	args = append(args, p.columnArgs()...)
	args = append(args, "-P")
	args = append(args, extra...)
	return execute.ProcessSpec{Program: exe, Args: args}
}

func (p *Plotter) sourceOverlayCommand(exe, sourceList, raster, out string) *execute.Command {
	first := p.sourceStage(exe, sourceList, raster, "-C", "red", "-w", "2", "-N", "50", "-x", "1", "-y", "1")

	secondArgs := []string{"-i", sourceList}
	secondArgs = append(secondArgs, p.columnArgs()...)
	secondArgs = append(secondArgs, "-I", "-", "-w", "2", "-r", "3", "-C", "red", "-n", "50", "-N", "200", "-x", "1", "-y", "1")

	return execute.NewCommand(first).
		Pipe(execute.ProcessSpec{Program: exe, Args: secondArgs}).
		RedirectTo(out)
}

// SourceOverlay renders the detected-source overlay image. The outcome
// is reported alongside the error so the caller can apply its failure
// policy (this stage usually degrades rather than aborts).
func (p *Plotter) SourceOverlay(ctx context.Context, sourceList, raster, out string) error {
	exe, err := p.tools.Path(p.plotxy)
	if err != nil {
		return err
	}
	cmd := p.sourceOverlayCommand(exe, sourceList, raster, out)
	if _, err := p.run.Run(ctx, cmd.String()); err != nil {
		return fmt.Errorf("source overlay plot failed: %w", err)
	}
	return nil
}

func (p *Plotter) indexOverlayCommand(plotxy, plotquad, sourceList, raster, indexList string, m MatchRecord, out string) *execute.Command {
	first := p.sourceStage(plotxy, sourceList, raster, "-C", "red", "-w", "2", "-r", "6", "-N", "200", "-x", "1", "-y", "1")

	second := execute.ProcessSpec{
		Program: plotxy,
		Args:    []string{"-i", indexList, "-I", "-", "-w", "2", "-r", "4", "-C", "green", "-x", "1", "-y", "1", "-P"},
	}

	quadArgs := []string{"-I", "-", "-C", "green", "-w", "2", "-d", strconv.Itoa(m.DimQuads)}
	for _, v := range m.QuadPix {
		quadArgs = append(quadArgs, strconv.FormatFloat(v, 'g', -1, 64))
	}

	return execute.NewCommand(first).
		Pipe(second).
		Pipe(execute.ProcessSpec{Program: plotquad, Args: quadArgs}).
		RedirectTo(out)
}

// IndexOverlay renders sources plus reprojected index stars plus the
// matched quad into one image.
func (p *Plotter) IndexOverlay(ctx context.Context, sourceList, raster, indexList string, m MatchRecord, out string) error {
	plotxy, err := p.tools.Path(p.plotxy)
	if err != nil {
		return err
	}
	plotquad, err := p.tools.Path(p.plotquad)
	if err != nil {
		return err
	}
	cmd := p.indexOverlayCommand(plotxy, plotquad, sourceList, raster, indexList, m, out)
	if _, err := p.run.Run(ctx, cmd.String()); err != nil {
		return fmt.Errorf("index overlay plot failed: %w", err)
	}
	return nil
}

func (p *Plotter) constellationsCommand(exe, wcsPath, raster, out string) *execute.Command {
	var args []string
	if p.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-w", wcsPath, "-i", raster, "-N", "-C", "-o", out)
	return execute.NewCommand(execute.ProcessSpec{Program: exe, Args: args})
}

// Constellations renders the constellation annotation image and returns
// the tool's report of what the field contains, one name per line.
func (p *Plotter) Constellations(ctx context.Context, wcsPath, raster, out string) ([]string, error) {
	exe, err := p.tools.Path(p.constell)
	if err != nil {
		return nil, err
	}
	cmd := p.constellationsCommand(exe, wcsPath, raster, out)
	outcome, err := p.run.RunCapture(ctx, cmd.String())
	if err != nil {
		return nil, fmt.Errorf("constellation plot failed: %w", err)
	}
	return outcome.Lines, nil
}
