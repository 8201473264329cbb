package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"skysolve/internal/pipeline"
	"skysolve/internal/watch"
)

// New builds the full command tree.
func New(root *Root) *cobra.Command {
	var (
		opts         pipeline.Options
		filesOnStdin bool
		scaleLow     float64
		scaleHigh    float64
		scaleUnits   string
		depth        string
		cpuLimit     int
	)

	rootCmd := &cobra.Command{
		Use:   "skysolve [flags] <image-or-xylist> ...",
		Short: "Solve astronomical images into calibrated astrometry",
		Long: `Skysolve coordinates the plate-solving tool suite: it prepares each
input, runs the solver backend, and renders annotated overlays, with
one naming and overwrite policy across the whole batch. Inputs may be
local files or http/ftp URLs.`,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !filesOnStdin {
				return fmt.Errorf("no inputs given (or use --files-on-stdin)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AugmentArgs = hintArgs(cmd, scaleLow, scaleHigh, scaleUnits, depth, cpuLimit)

			runner, err := root.newRunner(opts)
			if err != nil {
				return err
			}

			var stats pipeline.Stats
			if filesOnStdin {
				stats, err = runner.SolveStream(cmd.Context(), cmd.InOrStdin())
			} else {
				stats, err = runner.Solve(cmd.Context(), args)
			}
			root.log.Info("batch finished",
				"total", stats.Total, "solved", stats.Solved,
				"unsolved", stats.Unsolved, "skipped", stats.Skipped)
			return err
		},
	}

	// Shared with the watch subcommand.
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.OutDir, "dir", "D", "", "write output files into this directory")
	pf.StringVarP(&opts.OutTemplate, "out", "o", "", "output base-name template; %i is the input index, %f the input name")
	pf.StringVarP(&opts.BackendConfig, "backend-config", "b", "", "config file for the solver backend")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose tool output")
	pf.BoolVarP(&opts.NoPlots, "no-plots", "p", false, "skip all plot rendering")
	pf.BoolVarP(&opts.UseWget, "use-wget", "G", false, "download URLs with wget instead of curl")
	pf.BoolVarP(&opts.Overwrite, "overwrite", "O", false, "delete and recreate existing output files")
	pf.BoolVarP(&opts.Continue, "continue", "K", false, "proceed even when output files exist")
	pf.BoolVarP(&opts.SkipSolved, "skip-solved", "J", false, "skip inputs whose solved flag already exists")
	pf.StringVar(&opts.SolvedIn, "solved-in", "", "read the pre-solved flag from this path")
	pf.StringVar(&opts.XCol, "x-column", "", "X coordinate column name in source lists")
	pf.StringVar(&opts.YCol, "y-column", "", "Y coordinate column name in source lists")
	pf.StringVar(&opts.TempDir, "temp-dir", "", "directory for temporary files")

	fl := rootCmd.Flags()
	fl.BoolVarP(&filesOnStdin, "files-on-stdin", "f", false, "read input paths from stdin, one per line")
	fl.Float64VarP(&scaleLow, "scale-low", "L", 0, "lower bound of the field scale")
	fl.Float64VarP(&scaleHigh, "scale-high", "H", 0, "upper bound of the field scale")
	fl.StringVarP(&scaleUnits, "scale-units", "u", "", "units for the scale bounds (degwidth, arcminwidth, arcsecperpix)")
	fl.StringVar(&depth, "depth", "", "number of field objects to try matching")
	fl.IntVar(&cpuLimit, "cpu-limit", 0, "give up solving after this many seconds of CPU time")

	rootCmd.AddCommand(newWatchCmd(root, &opts))
	rootCmd.AddCommand(newHistoryCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// hintArgs renders the solver hint flags into preparer arguments. Only
// flags the user actually set are forwarded.
func hintArgs(cmd *cobra.Command, scaleLow, scaleHigh float64, scaleUnits, depth string, cpuLimit int) []string {
	var args []string
	if cmd.Flags().Changed("scale-low") {
		args = append(args, "--scale-low", strconv.FormatFloat(scaleLow, 'g', -1, 64))
	}
	if cmd.Flags().Changed("scale-high") {
		args = append(args, "--scale-high", strconv.FormatFloat(scaleHigh, 'g', -1, 64))
	}
	if scaleUnits != "" {
		args = append(args, "--scale-units", scaleUnits)
	}
	if depth != "" {
		args = append(args, "--depth", depth)
	}
	if cmd.Flags().Changed("cpu-limit") {
		args = append(args, "--cpulimit", strconv.Itoa(cpuLimit))
	}
	return args
}

func newWatchCmd(root *Root, opts *pipeline.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <directory> ...",
		Short: "Watch directories and solve new images as they arrive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := root.newRunner(*opts)
			if err != nil {
				return err
			}

			w, err := watch.New(root.log, args)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			ctx := cmd.Context()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					root.log.Info("new input", "path", ev.Path)
					// One bad input must not stop the watch loop.
					if _, err := runner.Solve(ctx, []string{ev.Path}); err != nil {
						root.log.Error("solve failed", "input", ev.Path, "error", err)
					}
				}
			}
		},
	}
}

func newHistoryCmd(root *Root) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent solve outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.store == nil {
				return fmt.Errorf("no history database configured")
			}
			recs, err := root.store.RecentInputs(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(w, "No solve history recorded.")
				return nil
			}
			for _, rec := range recs {
				line := fmt.Sprintf("%-8s %s  %s", rec.Status, rec.CreatedAt.Format(time.DateTime), rec.Input)
				switch rec.Status {
				case "solved":
					line += fmt.Sprintf("  center (%.4g, %.4g) deg, %g x %g %s",
						rec.RA, rec.Dec, rec.FieldW, rec.FieldH, rec.FieldUnits)
				case "failed":
					line += "  " + rec.Error
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.configShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(showCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("skysolve v1.0.0")
		},
	}
}
