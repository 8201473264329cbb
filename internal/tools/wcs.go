package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"skysolve/internal/execute"
)

// FieldInfo summarizes a fitted world coordinate solution.
type FieldInfo struct {
	RA, Dec       float64 // field center, degrees
	RAHMS, DecDMS string  // field center, sexagesimal
	Width, Height float64
	Units         string
}

// WCSTools wraps the coordinate reprojector and the WCS header reader.
type WCSTools struct {
	run       runner
	tools     *Toolset
	infoName  string
	rd2xyName string
}

// NewWCSTools wires the WCS utilities over the named executables.
func NewWCSTools(run runner, ts *Toolset, infoName, rd2xyName string) *WCSTools {
	return &WCSTools{run: run, tools: ts, infoName: infoName, rd2xyName: rd2xyName}
}

// Reproject projects the catalog RA,Dec list into field pixel
// coordinates using the WCS solution.
func (w *WCSTools) Reproject(ctx context.Context, wcsPath, rdlsPath, outPath string) error {
	exe, err := w.tools.Path(w.rd2xyName)
	if err != nil {
		return err
	}
	cmd := execute.NewCommand(execute.ProcessSpec{
		Program: exe,
		Args:    []string{"-w", wcsPath, "-i", rdlsPath, "-o", outPath},
	})
	if _, err := w.run.Run(ctx, cmd.String()); err != nil {
		return fmt.Errorf("projecting index stars into field coordinates failed: %w", err)
	}
	return nil
}

// ReadField reads the WCS header and reports field center and size.
func (w *WCSTools) ReadField(ctx context.Context, wcsPath string) (FieldInfo, error) {
	exe, err := w.tools.Path(w.infoName)
	if err != nil {
		return FieldInfo{}, err
	}
	cmd := execute.NewCommand(execute.ProcessSpec{Program: exe, Args: []string{wcsPath}})
	out, err := w.run.RunCapture(ctx, cmd.String())
	if err != nil {
		return FieldInfo{}, fmt.Errorf("reading WCS header from %q failed: %w", wcsPath, err)
	}
	return parseFieldInfo(out.Lines)
}

// parseFieldInfo extracts the center/size keys from the reader's
// "key value" output lines.
func parseFieldInfo(lines []string) (FieldInfo, error) {
	var info FieldInfo
	seen := map[string]bool{}
	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "ra_center":
			info.RA, _ = strconv.ParseFloat(value, 64)
		case "dec_center":
			info.Dec, _ = strconv.ParseFloat(value, 64)
		case "ra_center_hms":
			info.RAHMS = value
		case "dec_center_dms":
			info.DecDMS = value
		case "fieldw":
			info.Width, _ = strconv.ParseFloat(value, 64)
		case "fieldh":
			info.Height, _ = strconv.ParseFloat(value, 64)
		case "fieldunits":
			info.Units = value
		default:
			continue
		}
		seen[key] = true
	}
	for _, key := range []string{"ra_center", "dec_center", "fieldw", "fieldh"} {
		if !seen[key] {
			return info, fmt.Errorf("WCS header report is missing %q", key)
		}
	}
	return info, nil
}
