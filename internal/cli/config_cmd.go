package cli

import (
	"fmt"
	"io"
	"os"
)

func (r *Root) configShow(w io.Writer) error {
	fmt.Fprintf(w, "Current configuration:\n")
	cfgPath := os.Getenv("SKYSOLVE_CONFIG")
	if cfgPath == "" {
		cfgPath = "(default) ~/.config/skysolve/config.json"
	}
	fmt.Fprintf(w, "Config file: %s\n", cfgPath)
	fmt.Fprintf(w, "\nPaths:\n")
	fmt.Fprintf(w, "  Temp directory: %s\n", r.cfg.Paths.TempDir)
	fmt.Fprintf(w, "  History database: %s\n", r.cfg.Paths.DatabasePath)
	fmt.Fprintf(w, "\nTools:\n")
	fmt.Fprintf(w, "  Preparer: %s\n", r.cfg.Tools.Augment)
	fmt.Fprintf(w, "  Solver engine: %s\n", r.cfg.Tools.Engine)
	fmt.Fprintf(w, "  Plotters: %s, %s, %s\n", r.cfg.Tools.PlotXY, r.cfg.Tools.PlotQuad, r.cfg.Tools.Constellations)
	fmt.Fprintf(w, "  WCS utilities: %s, %s\n", r.cfg.Tools.WCSInfo, r.cfg.Tools.WCSRd2XY)
	fmt.Fprintf(w, "  Fetchers: %s, %s\n", r.cfg.Tools.Curl, r.cfg.Tools.Wget)
	fmt.Fprintf(w, "\nPlots:\n")
	fmt.Fprintf(w, "  Disabled: %t\n", r.cfg.Plots.Disabled)
	fmt.Fprintf(w, "  On source overlay failure: %s\n", r.cfg.Plots.OnSourceOverlayFailure)
	fmt.Fprintf(w, "  On index overlay failure: %s\n", r.cfg.Plots.OnIndexOverlayFailure)
	fmt.Fprintf(w, "  On constellations failure: %s\n", r.cfg.Plots.OnConstellationsFailure)
	fmt.Fprintf(w, "\nLogging:\n")
	fmt.Fprintf(w, "  Level: %s\n", r.cfg.Logging.Level)
	fmt.Fprintf(w, "  Format: %s\n", r.cfg.Logging.Format)
	return nil
}
