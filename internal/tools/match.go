package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"skysolve/internal/execute"
)

// MatchRecord is one quad-match correspondence: the quad dimensionality
// and the 2*DimQuads pixel coordinates of its stars.
type MatchRecord struct {
	DimQuads int
	QuadPix  []float64
}

// MatchReader reads the first match record from a match-result file.
type MatchReader interface {
	FirstMatch(ctx context.Context, path string) (MatchRecord, error)
}

// ExecMatchReader shells out to the suite's match dump tool, which
// prints "dimquads N" and "quadpix x1 y1 ..." lines for the first record.
type ExecMatchReader struct {
	run   runner
	tools *Toolset
	name  string
}

// NewExecMatchReader builds a match reader over the named executable.
func NewExecMatchReader(run runner, ts *Toolset, name string) *ExecMatchReader {
	return &ExecMatchReader{run: run, tools: ts, name: name}
}

func (m *ExecMatchReader) FirstMatch(ctx context.Context, path string) (MatchRecord, error) {
	exe, err := m.tools.Path(m.name)
	if err != nil {
		return MatchRecord{}, err
	}
	cmd := execute.NewCommand(execute.ProcessSpec{Program: exe, Args: []string{path}})
	out, err := m.run.RunCapture(ctx, cmd.String())
	if err != nil {
		return MatchRecord{}, fmt.Errorf("reading a match from %q failed: %w", path, err)
	}
	rec, err := parseMatchRecord(out.Lines)
	if err != nil {
		return MatchRecord{}, fmt.Errorf("reading a match from %q failed: %w", path, err)
	}
	return rec, nil
}

func parseMatchRecord(lines []string) (MatchRecord, error) {
	var rec MatchRecord
	for _, line := range lines {
		key, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		switch key {
		case "dimquads":
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return rec, fmt.Errorf("bad dimquads value %q", rest)
			}
			rec.DimQuads = n
		case "quadpix":
			for _, f := range strings.Fields(rest) {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return rec, fmt.Errorf("bad quadpix value %q", f)
				}
				rec.QuadPix = append(rec.QuadPix, v)
			}
		}
	}
	if rec.DimQuads == 0 {
		return rec, fmt.Errorf("no match record found")
	}
	if len(rec.QuadPix) != 2*rec.DimQuads {
		return rec, fmt.Errorf("match record has %d pixel values, want %d",
			len(rec.QuadPix), 2*rec.DimQuads)
	}
	return rec, nil
}
