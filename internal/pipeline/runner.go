// Package pipeline drives the per-input solve sequence: derive output
// names, resolve existing artifacts, acquire remote inputs, classify,
// prepare, solve, then report and plot. One runner handles a whole
// batch; each input gets a fresh job state built from the shared
// options.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"skysolve/internal/config"
	"skysolve/internal/execute"
	"skysolve/internal/fsutil"
	"skysolve/internal/naming"
	"skysolve/internal/storage"
	"skysolve/internal/tools"
)

// Options captures one batch's settings. The pipeline never mutates
// them; per-input state lives in the job struct.
type Options struct {
	OutDir        string
	OutTemplate   string
	BackendConfig string
	Verbose       bool
	NoPlots       bool
	UseWget       bool
	Overwrite     bool
	Continue      bool
	SkipSolved    bool
	SolvedIn      string
	XCol, YCol    string
	TempDir       string
	AugmentArgs   []string
}

// Stats aggregates batch outcomes. Skipped and unsolved inputs are
// normal; only fatal errors make the batch itself fail.
type Stats struct {
	Total    int
	Solved   int
	Unsolved int
	Skipped  int
}

// Runner executes the solve pipeline over a sequence of inputs.
type Runner struct {
	cfg  *config.Config
	log  *slog.Logger
	opts Options

	classifier tools.Classifier
	matches    tools.MatchReader
	preparer   *tools.Preparer
	engine     *tools.Engine
	fetcher    *tools.Fetcher
	plotter    *tools.Plotter
	wcs        *tools.WCSTools

	store *storage.Store
	runID string

	// plotsEnabled carries the degrade state across inputs: once a
	// degradable plot stage fails, plotting stays off for the run.
	plotsEnabled bool
}

// NewRunner wires the external tool suite. The solver engine must be
// resolvable up front; every other tool is resolved lazily so a missing
// plotter surfaces under that stage's failure policy.
func NewRunner(cfg *config.Config, log *slog.Logger, opts Options, store *storage.Store) (*Runner, error) {
	run := &execute.Runner{Log: log}
	ts := tools.NewToolset()

	engine, err := tools.NewEngine(run, ts, cfg.Tools.Engine, opts.BackendConfig, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("locating solver engine: %w", err)
	}

	fetcher := tools.NewFetcher(run, ts, cfg.Tools.Curl, cfg.Tools.Wget)
	fetcher.UseWget = opts.UseWget || cfg.Fetch.PreferWget
	fetcher.Quiet = !opts.Verbose

	plotter := tools.NewPlotter(run, ts, cfg.Tools.PlotXY, cfg.Tools.PlotQuad, cfg.Tools.Constellations)
	plotter.XCol = opts.XCol
	plotter.YCol = opts.YCol
	plotter.Verbose = opts.Verbose

	return &Runner{
		cfg:          cfg,
		log:          log,
		opts:         opts,
		classifier:   tools.NewExecClassifier(run, ts, cfg.Tools.SourceListInfo),
		matches:      tools.NewExecMatchReader(run, ts, cfg.Tools.MatchInfo),
		preparer:     tools.NewPreparer(run, ts, cfg.Tools.Augment),
		engine:       engine,
		fetcher:      fetcher,
		plotter:      plotter,
		wcs:          tools.NewWCSTools(run, ts, cfg.Tools.WCSInfo, cfg.Tools.WCSRd2XY),
		store:        store,
		plotsEnabled: !opts.NoPlots && !cfg.Plots.Disabled,
	}, nil
}

// Solve processes the inputs in order. A fatal error aborts the batch
// and is returned; skipped and unsolved inputs are counted and the
// batch continues.
func (r *Runner) Solve(ctx context.Context, inputs []string) (Stats, error) {
	var stats Stats
	if err := r.ensureOutDir(); err != nil {
		return stats, err
	}
	runID, err := r.store.BeginRun()
	if err != nil {
		r.log.Warn("history database unavailable", "error", err)
	}
	r.runID = runID

	for i, ref := range inputs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Total++
		if err := r.processInput(ctx, i+1, ref, &stats); err != nil {
			r.finish(&stats)
			return stats, err
		}
	}
	r.finish(&stats)
	return stats, nil
}

// SolveStream reads one input reference per line and solves each as it
// arrives.
func (r *Runner) SolveStream(ctx context.Context, in io.Reader) (Stats, error) {
	var stats Stats
	if err := r.ensureOutDir(); err != nil {
		return stats, err
	}
	runID, err := r.store.BeginRun()
	if err != nil {
		r.log.Warn("history database unavailable", "error", err)
	}
	r.runID = runID

	sc := bufio.NewScanner(in)
	index := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ref := sc.Text()
		if ref == "" {
			continue
		}
		index++
		stats.Total++
		if err := r.processInput(ctx, index, ref, &stats); err != nil {
			r.finish(&stats)
			return stats, err
		}
	}
	r.finish(&stats)
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading input list: %w", err)
	}
	return stats, nil
}

func (r *Runner) ensureOutDir() error {
	if r.opts.OutDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

func (r *Runner) finish(stats *Stats) {
	if err := r.store.FinishRun(r.runID, stats.Total, stats.Solved, stats.Unsolved, stats.Skipped); err != nil {
		r.log.Warn("recording run summary", "error", err)
	}
}

func (r *Runner) record(rec storage.InputRecord) {
	rec.RunID = r.runID
	if err := r.store.RecordInput(rec); err != nil {
		r.log.Warn("recording input outcome", "error", err)
	}
}

// job is the per-input state. Built fresh for every input.
type job struct {
	index   int
	ref     string // as given on the command line
	input   string // local path after acquisition
	outputs naming.OutputSet
	isImage bool
	raster  string // temp raster conversion target, image inputs only
	temps   []string
}

func (j *job) cleanup(log *slog.Logger) {
	for _, path := range j.temps {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("removing temp file", "path", path, "error", err)
		}
	}
}

func (r *Runner) processInput(ctx context.Context, index int, ref string, stats *Stats) error {
	log := r.log.With("input", ref)
	log.Info("processing input", "index", index)

	j := &job{
		index:   index,
		ref:     ref,
		input:   ref,
		outputs: naming.Derive(ref, index, r.opts.OutDir, r.opts.OutTemplate),
	}
	defer j.cleanup(log)

	if err := r.solveInput(ctx, j, log, stats); err != nil {
		r.record(storage.InputRecord{Input: ref, Base: j.outputs.Base, Status: "failed", Error: err.Error()})
		return err
	}
	return nil
}

func (r *Runner) solveInput(ctx context.Context, j *job, log *slog.Logger, stats *Stats) error {
	ref := j.ref
	solvedPath := j.outputs.Path(naming.RoleSolved)

	// Already solved in an earlier run?
	if r.opts.SkipSolved {
		if prior := fsutil.FirstExisting(r.opts.SolvedIn, solvedPath); prior != "" {
			log.Info("solved in a previous run, skipping", "flag", prior)
			stats.Skipped++
			r.record(storage.InputRecord{Input: ref, Base: j.outputs.Base, Status: "skipped"})
			return nil
		}
	}

	conflict, err := resolveExisting(j.outputs, r.opts.Overwrite, r.opts.Continue, r.opts.SolvedIn)
	if err != nil {
		return fmt.Errorf("clearing outputs for %s: %w", ref, err)
	}
	if conflict != "" {
		log.Warn("output file already exists; use --overwrite to replace it or --continue to keep going",
			"path", conflict)
		stats.Skipped++
		r.record(storage.InputRecord{Input: ref, Base: j.outputs.Base, Status: "skipped"})
		return nil
	}

	if err := r.acquire(ctx, j, log); err != nil {
		return err
	}
	if err := r.classify(ctx, j, log); err != nil {
		return err
	}
	if err := r.prepare(ctx, j); err != nil {
		return err
	}
	if err := r.engine.Solve(ctx, j.outputs.Path(naming.RoleSourceList)); err != nil {
		if execute.IsCancelled(err) {
			return fmt.Errorf("solver cancelled: %w", err)
		}
		return fmt.Errorf("solver failed: %w", err)
	}

	if !fsutil.FileExists(solvedPath) {
		log.Info("field did not solve")
		stats.Unsolved++
		r.record(storage.InputRecord{Input: ref, Base: j.outputs.Base, Status: "unsolved"})
		return nil
	}

	field, err := r.report(ctx, j)
	if err != nil {
		return err
	}
	if err := r.plots(ctx, j, log); err != nil {
		return err
	}

	stats.Solved++
	r.record(storage.InputRecord{
		Input: ref, Base: j.outputs.Base, Status: "solved",
		RA: field.RA, Dec: field.Dec,
		FieldW: field.Width, FieldH: field.Height, FieldUnits: field.Units,
	})
	return nil
}

// acquire downloads remote references into the derived downloaded-copy
// path. A reference that already names a local file is used as-is, even
// when it looks like a URL.
func (r *Runner) acquire(ctx context.Context, j *job, log *slog.Logger) error {
	if fsutil.FileExists(j.ref) || !tools.RemoteRef(j.ref) {
		return nil
	}
	dest := j.outputs.Path(naming.RoleDownload)
	log.Info("downloading input", "url", j.ref, "path", dest)
	if err := r.fetcher.Fetch(ctx, j.ref, dest); err != nil {
		if execute.IsCancelled(err) {
			return fmt.Errorf("download cancelled: %w", err)
		}
		return fmt.Errorf("downloading %s: %w", j.ref, err)
	}
	j.input = dest
	return nil
}

// classify decides whether the input is already a source list. Image
// inputs additionally get a temp raster target for the preparer's
// format conversion.
func (r *Runner) classify(ctx context.Context, j *job, log *slog.Logger) error {
	isList, reason, err := r.classifier.IsSourceList(ctx, j.input, r.opts.XCol, r.opts.YCol)
	if err != nil {
		return fmt.Errorf("classifying %s: %w", j.input, err)
	}
	if isList {
		log.Debug("input is a source list")
		return nil
	}
	log.Debug("input is an image", "reason", reason)
	j.isImage = true

	f, err := os.CreateTemp(r.tempDir(), "skysolve-*.ppm")
	if err != nil {
		return fmt.Errorf("creating temp raster: %w", err)
	}
	f.Close()
	j.raster = f.Name()
	j.temps = append(j.temps, j.raster)
	return nil
}

func (r *Runner) tempDir() string {
	if r.opts.TempDir != "" {
		return r.opts.TempDir
	}
	return r.cfg.Paths.TempDir
}

func (r *Runner) prepare(ctx context.Context, j *job) error {
	req := tools.PrepareRequest{
		XCol:      r.opts.XCol,
		YCol:      r.opts.YCol,
		TempDir:   r.tempDir(),
		Verbose:   r.opts.Verbose,
		ExtraArgs: append(append([]string(nil), r.cfg.Solver.ExtraArgs...), r.opts.AugmentArgs...),
		Outputs:   j.outputs,
	}
	if j.isImage {
		req.Image = j.input
		req.Raster = j.raster
		req.ForcePPM = true
	} else {
		req.SourceList = j.input
	}
	if err := r.preparer.Prepare(ctx, req); err != nil {
		if execute.IsCancelled(err) {
			return fmt.Errorf("preparer cancelled: %w", err)
		}
		return fmt.Errorf("preparing %s: %w", j.input, err)
	}
	return nil
}

// report reprojects the catalog positions into field pixels and prints
// the field center and size from the fitted solution.
func (r *Runner) report(ctx context.Context, j *job) (tools.FieldInfo, error) {
	wcsPath := j.outputs.Path(naming.RoleWCS)
	err := r.wcs.Reproject(ctx, wcsPath,
		j.outputs.Path(naming.RoleCatalogRDLS),
		j.outputs.Path(naming.RoleIndexXYLS))
	if err != nil {
		return tools.FieldInfo{}, fmt.Errorf("reprojecting catalog positions: %w", err)
	}

	field, err := r.wcs.ReadField(ctx, wcsPath)
	if err != nil {
		return tools.FieldInfo{}, fmt.Errorf("reading solution for %s: %w", j.input, err)
	}
	fmt.Printf("Field center: (RA,Dec) = (%.4g, %.4g) deg.\n", field.RA, field.Dec)
	if field.RAHMS != "" && field.DecDMS != "" {
		fmt.Printf("Field center: (RA H:M:S, Dec D:M:S) = (%s, %s).\n", field.RAHMS, field.DecDMS)
	}
	fmt.Printf("Field size: %g x %g %s\n", field.Width, field.Height, field.Units)
	return field, nil
}

// plots renders the overlays for a solved field. Each stage carries its
// own failure policy; cancellation always aborts the batch.
func (r *Runner) plots(ctx context.Context, j *job, log *slog.Logger) error {
	if !r.plotsEnabled {
		return nil
	}

	raster := ""
	if j.isImage {
		raster = j.raster
	}

	err := r.plotter.SourceOverlay(ctx,
		j.outputs.Path(naming.RoleSourceList), raster,
		j.outputs.Path(naming.RoleObjsPlot))
	if done, err := r.plotFailure(log, "source overlay", r.cfg.Plots.OnSourceOverlayFailure, err); done {
		return err
	}

	match, err := r.matches.FirstMatch(ctx, j.outputs.Path(naming.RoleMatch))
	if err == nil {
		err = r.plotter.IndexOverlay(ctx,
			j.outputs.Path(naming.RoleSourceList), raster,
			j.outputs.Path(naming.RoleIndexXYLS), match,
			j.outputs.Path(naming.RoleIndexPlot))
	}
	if done, err := r.plotFailure(log, "index overlay", r.cfg.Plots.OnIndexOverlayFailure, err); done {
		return err
	}

	if j.isImage {
		lines, err := r.plotter.Constellations(ctx,
			j.outputs.Path(naming.RoleWCS), j.raster,
			j.outputs.Path(naming.RoleConstellations))
		if done, err := r.plotFailure(log, "constellation overlay", r.cfg.Plots.OnConstellationsFailure, err); done {
			return err
		}
		if len(lines) > 0 {
			fmt.Println("Your field contains:")
			for _, line := range lines {
				fmt.Println("  " + line)
			}
		}
	}
	return nil
}

// plotFailure applies the stage's failure policy. It reports whether
// the error was terminal for this input's plotting; a degrade disables
// plotting for the rest of the run but lets the input succeed.
func (r *Runner) plotFailure(log *slog.Logger, stage, policy string, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if execute.IsCancelled(err) {
		return true, fmt.Errorf("%s cancelled: %w", stage, err)
	}
	if policy == config.PlotDegrade {
		log.Warn("plot stage failed, disabling plots for this run", "stage", stage, "error", err)
		r.plotsEnabled = false
		return true, nil
	}
	return true, fmt.Errorf("%s failed: %w", stage, err)
}
