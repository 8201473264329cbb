package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const defaultConfigPath = "~/.config/skysolve/config.json"

// Plot failure policies. Degrade turns plotting off for the rest of the
// run; abort stops the whole batch.
const (
	PlotDegrade = "degrade"
	PlotAbort   = "abort"
)

// Config holds user-editable settings for the solver pipeline.
type Config struct {
	Logging Logging `json:"logging"`
	Paths   Paths   `json:"paths"`
	Tools   Tools   `json:"tools"`
	Fetch   Fetch   `json:"fetch"`
	Plots   Plots   `json:"plots"`
	Solver  Solver  `json:"solver"`
}

// Logging controls verbosity and output format.
type Logging struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json, tint
}

// Paths configures working locations.
type Paths struct {
	TempDir      string `json:"temp_dir"`
	DatabasePath string `json:"database_path"` // solve history; empty disables it
}

// Tools names the external executables of the suite. Bare names are
// resolved against the running binary's directory and PATH.
type Tools struct {
	Augment        string `json:"augment"`
	Engine         string `json:"engine"`
	PlotXY         string `json:"plotxy"`
	PlotQuad       string `json:"plotquad"`
	Constellations string `json:"constellations"`
	WCSInfo        string `json:"wcsinfo"`
	WCSRd2XY       string `json:"wcs_rd2xy"`
	SourceListInfo string `json:"source_list_info"`
	MatchInfo      string `json:"match_info"`
	Curl           string `json:"curl"`
	Wget           string `json:"wget"`
}

// Fetch configures remote input acquisition.
type Fetch struct {
	PreferWget bool `json:"prefer_wget"`
}

// Plots configures result rendering and the per-stage failure policy.
// The source overlay degrades by default while the later stages abort;
// that asymmetry matches the suite's historical behavior and can be
// overridden here.
type Plots struct {
	Disabled                bool   `json:"disabled"`
	OnSourceOverlayFailure  string `json:"on_source_overlay_failure"`
	OnIndexOverlayFailure   string `json:"on_index_overlay_failure"`
	OnConstellationsFailure string `json:"on_constellations_failure"`
}

// Solver configures the engine and preparer invocations.
type Solver struct {
	ConfigFile string   `json:"config_file"`
	ExtraArgs  []string `json:"extra_args"` // forwarded verbatim to the preparer
}

// Load reads configuration from disk, falling back to sensible defaults.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("SKYSOLVE_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	expanded, err := expandUser(configPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Paths: Paths{
			TempDir:      os.TempDir(),
			DatabasePath: filepath.Join(os.TempDir(), "skysolve.db"),
		},
		Tools: Tools{
			Augment:        "augment-xylist",
			Engine:         "astrometry-engine",
			PlotXY:         "plotxy",
			PlotQuad:       "plotquad",
			Constellations: "plot-constellations",
			WCSInfo:        "wcsinfo",
			WCSRd2XY:       "wcs-rd2xy",
			SourceListInfo: "xylsinfo",
			MatchInfo:      "matchinfo",
			Curl:           "curl",
			Wget:           "wget",
		},
		Plots: Plots{
			OnSourceOverlayFailure:  PlotDegrade,
			OnIndexOverlayFailure:   PlotAbort,
			OnConstellationsFailure: PlotAbort,
		},
	}
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
