package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skysolve/internal/config"
	"skysolve/internal/pipeline"
	"skysolve/internal/storage"
)

type stubRunner struct {
	opts    pipeline.Options
	inputs  []string
	streams []string
	stats   pipeline.Stats
	err     error
}

func (s *stubRunner) Solve(ctx context.Context, inputs []string) (pipeline.Stats, error) {
	s.inputs = append(s.inputs, inputs...)
	return s.stats, s.err
}

func (s *stubRunner) SolveStream(ctx context.Context, in io.Reader) (pipeline.Stats, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return s.stats, err
	}
	s.streams = append(s.streams, string(data))
	return s.stats, s.err
}

func testRoot(t *testing.T) (*Root, *stubRunner) {
	t.Helper()
	t.Setenv("SKYSOLVE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	root := NewRoot(cfg, log, nil)
	stub := &stubRunner{}
	root.newRunner = func(opts pipeline.Options) (solveRunner, error) {
		stub.opts = opts
		return stub, nil
	}
	return root, stub
}

func TestRootCommandFlagsReachPipeline(t *testing.T) {
	root, stub := testRoot(t)
	cmd := New(root)
	cmd.SetArgs([]string{
		"--dir", "/out",
		"--out", "frame-%i",
		"--backend-config", "/etc/engine.cfg",
		"--overwrite",
		"--skip-solved",
		"--use-wget",
		"--no-plots",
		"--x-column", "XIM",
		"--scale-low", "0.5",
		"--scale-high", "2",
		"--scale-units", "degwidth",
		"sky.png",
	})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(stub.inputs) != 1 || stub.inputs[0] != "sky.png" {
		t.Errorf("inputs = %v", stub.inputs)
	}
	opts := stub.opts
	if opts.OutDir != "/out" || opts.OutTemplate != "frame-%i" || opts.BackendConfig != "/etc/engine.cfg" {
		t.Errorf("options not forwarded: %+v", opts)
	}
	if !opts.Overwrite || !opts.SkipSolved || !opts.UseWget || !opts.NoPlots {
		t.Errorf("boolean flags not forwarded: %+v", opts)
	}
	if opts.XCol != "XIM" {
		t.Errorf("XCol = %q", opts.XCol)
	}
	want := []string{"--scale-low", "0.5", "--scale-high", "2", "--scale-units", "degwidth"}
	if strings.Join(opts.AugmentArgs, " ") != strings.Join(want, " ") {
		t.Errorf("AugmentArgs = %v, want %v", opts.AugmentArgs, want)
	}
}

func TestRootCommandRequiresInputs(t *testing.T) {
	root, _ := testRoot(t)
	cmd := New(root)
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error with no inputs")
	}
}

func TestFilesOnStdin(t *testing.T) {
	root, stub := testRoot(t)
	cmd := New(root)
	cmd.SetArgs([]string{"--files-on-stdin"})
	cmd.SetIn(strings.NewReader("a.png\nb.png\n"))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(stub.streams) != 1 || stub.streams[0] != "a.png\nb.png\n" {
		t.Errorf("stream input = %v", stub.streams)
	}
	if len(stub.inputs) != 0 {
		t.Errorf("positional solve ran in stdin mode: %v", stub.inputs)
	}
}

func TestUnsetHintFlagsAreNotForwarded(t *testing.T) {
	root, stub := testRoot(t)
	cmd := New(root)
	cmd.SetArgs([]string{"sky.png"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(stub.opts.AugmentArgs) != 0 {
		t.Errorf("AugmentArgs = %v, want none", stub.opts.AugmentArgs)
	}
}

func TestConfigShow(t *testing.T) {
	root, _ := testRoot(t)
	var out bytes.Buffer
	if err := root.configShow(&out); err != nil {
		t.Fatalf("configShow: %v", err)
	}
	for _, want := range []string{"Solver engine: astrometry-engine", "On source overlay failure: degrade"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("config show output missing %q", want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root, _ := testRoot(t)
	cmd := New(root)
	var out bytes.Buffer
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "skysolve") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestHistoryCommand(t *testing.T) {
	t.Setenv("SKYSOLVE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	store, err := storage.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer store.Close()

	runID, err := store.BeginRun()
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.RecordInput(storage.InputRecord{
		RunID: runID, Input: "/data/sky.png", Status: "solved",
		RA: 83.822, Dec: -5.391, FieldW: 1.25, FieldH: 0.94, FieldUnits: "degrees",
	}); err != nil {
		t.Fatalf("RecordInput: %v", err)
	}
	if err := store.RecordInput(storage.InputRecord{
		RunID: runID, Input: "http://host/far.png", Status: "failed",
		Error: "downloading http://host/far.png: fetch failed",
	}); err != nil {
		t.Fatalf("RecordInput: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	root := NewRoot(cfg, log, store)
	cmd := New(root)
	var out bytes.Buffer
	cmd.SetArgs([]string{"history"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"/data/sky.png", "solved", "1.25 x 0.94 degrees", "fetch failed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("history output missing %q:\n%s", want, out.String())
		}
	}
}

func TestHistoryCommandWithoutDatabase(t *testing.T) {
	root, _ := testRoot(t)
	cmd := New(root)
	cmd.SetArgs([]string{"history"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when no history database is configured")
	}
}
