package tools

import (
	"strings"
	"testing"

	"skysolve/internal/execute"
	"skysolve/internal/naming"
)

func TestFetchCommand(t *testing.T) {
	cmd := fetchCommand("/usr/bin/curl", false, true, "http://host/img.fits", "img-downloaded.fits")
	want := "/usr/bin/curl --silent --output img-downloaded.fits 'http://host/img.fits'"
	if got := cmd.String(); got != want {
		t.Errorf("curl command = %q, want %q", got, want)
	}

	cmd = fetchCommand("/usr/bin/wget", true, false, "ftp://host/img.fits", "img-downloaded.fits")
	want = "/usr/bin/wget -O img-downloaded.fits 'ftp://host/img.fits'"
	if got := cmd.String(); got != want {
		t.Errorf("wget command = %q, want %q", got, want)
	}
}

func TestRemoteRef(t *testing.T) {
	for _, ref := range []string{"http://host/a.fits", "HTTP://host/a.fits", "ftp://host/a"} {
		if !RemoteRef(ref) {
			t.Errorf("%q should be remote", ref)
		}
	}
	for _, ref := range []string{"sky.png", "/data/sky.png", "https.png"} {
		if RemoteRef(ref) {
			t.Errorf("%q should not be remote", ref)
		}
	}
}

func TestPrepareCommandImage(t *testing.T) {
	req := PrepareRequest{
		Image:    "sky-downloaded.png",
		Raster:   "/tmp/skysolve-123.ppm",
		ForcePPM: true,
		TempDir:  "/tmp",
		Verbose:  true,
		Outputs:  naming.Derive("sky.png", 1, "", ""),
	}
	got := prepareCommand("/opt/an/augment-xylist", req).String()
	for _, frag := range []string{
		"--verbose",
		"--out sky.axy",
		"--match sky.match",
		"--rdls sky.rdls",
		"--solved sky.solved",
		"--wcs sky.wcs",
		"--temp-dir /tmp",
		"--image sky-downloaded.png",
		"--pnm /tmp/skysolve-123.ppm",
		"--ppm",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("command missing %q:\n%s", frag, got)
		}
	}
	if strings.Contains(got, "--xylist") {
		t.Errorf("image request must not pass --xylist:\n%s", got)
	}
}

func TestPrepareCommandSourceList(t *testing.T) {
	req := PrepareRequest{
		SourceList: "stars.xyls",
		XCol:       "XIMAGE",
		YCol:       "YIMAGE",
		Outputs:    naming.Derive("stars.xyls", 1, "", ""),
		ExtraArgs:  []string{"--scale-low", "0.5"},
	}
	got := prepareCommand("augment-xylist", req).String()
	for _, frag := range []string{
		"--xylist stars.xyls",
		"--x-column XIMAGE",
		"--y-column YIMAGE",
		"--scale-low 0.5",
	} {
		if !strings.Contains(got, frag) {
			t.Errorf("command missing %q:\n%s", frag, got)
		}
	}
	if strings.Contains(got, "--image") {
		t.Errorf("source-list request must not pass --image:\n%s", got)
	}
}

func TestEngineCommandCopiesPrefix(t *testing.T) {
	e := &Engine{prefix: []string{"/opt/an/engine", "--config", "an.cfg"}}
	first := e.command("a.axy")
	second := e.command("b.axy")
	if first != "/opt/an/engine --config an.cfg a.axy" {
		t.Errorf("first command = %q", first)
	}
	if second != "/opt/an/engine --config an.cfg b.axy" {
		t.Errorf("per-input arguments leaked into the shared prefix: %q", second)
	}
	if len(e.prefix) != 3 {
		t.Errorf("prefix length changed to %d", len(e.prefix))
	}
}

func TestSourceOverlayCommand(t *testing.T) {
	p := &Plotter{}
	got := p.sourceOverlayCommand("plotxy", "sky.axy", "/tmp/r.ppm", "sky-objs.png").String()
	want := "plotxy -i sky.axy -I /tmp/r.ppm -P -C red -w 2 -N 50 -x 1 -y 1" +
		" | plotxy -i sky.axy -I - -w 2 -r 3 -C red -n 50 -N 200 -x 1 -y 1" +
		" > sky-objs.png"
	if got != want {
		t.Errorf("command = %q\nwant %q", got, want)
	}
}

func TestSourceOverlayCommandColumns(t *testing.T) {
	p := &Plotter{XCol: "XC", YCol: "YC"}
	got := p.sourceOverlayCommand("plotxy", "f.axy", "", "f-objs.png").String()
	if !strings.Contains(got, "-X XC -Y YC") {
		t.Errorf("column hints missing: %q", got)
	}
	if strings.Contains(got, "-I /") {
		t.Errorf("raster flag must be absent for list inputs: %q", got)
	}
}

func TestIndexOverlayCommand(t *testing.T) {
	p := &Plotter{}
	m := MatchRecord{DimQuads: 2, QuadPix: []float64{1.5, 2, 3, 4.25}}
	got := p.indexOverlayCommand("plotxy", "plotquad", "sky.axy", "/tmp/r.ppm", "sky-indx.xyls", m, "sky-indx.png").String()
	want := "plotxy -i sky.axy -I /tmp/r.ppm -P -C red -w 2 -r 6 -N 200 -x 1 -y 1" +
		" | plotxy -i sky-indx.xyls -I - -w 2 -r 4 -C green -x 1 -y 1 -P" +
		" | plotquad -I - -C green -w 2 -d 2 1.5 2 3 4.25" +
		" > sky-indx.png"
	if got != want {
		t.Errorf("command = %q\nwant %q", got, want)
	}
}

func TestConstellationsCommand(t *testing.T) {
	p := &Plotter{Verbose: true}
	got := p.constellationsCommand("plot-constellations", "sky.wcs", "/tmp/r.ppm", "sky-ngc.png").String()
	want := "plot-constellations -v -w sky.wcs -i /tmp/r.ppm -N -C -o sky-ngc.png"
	if got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestParseFieldInfo(t *testing.T) {
	lines := []string{
		"crpix0 512.5",
		"ra_center 290.9547",
		"dec_center 11.1234",
		"ra_center_hms 19:23:49.13",
		"dec_center_dms 11:07:24.2",
		"fieldw 1.52",
		"fieldh 1.13",
		"fieldunits degrees",
	}
	info, err := parseFieldInfo(lines)
	if err != nil {
		t.Fatalf("parseFieldInfo: %v", err)
	}
	if info.RA != 290.9547 || info.Dec != 11.1234 {
		t.Errorf("center = %v,%v", info.RA, info.Dec)
	}
	if info.RAHMS != "19:23:49.13" || info.DecDMS != "11:07:24.2" {
		t.Errorf("sexagesimal center = %q,%q", info.RAHMS, info.DecDMS)
	}
	if info.Width != 1.52 || info.Height != 1.13 || info.Units != "degrees" {
		t.Errorf("size = %v x %v %q", info.Width, info.Height, info.Units)
	}
}

func TestParseFieldInfoMissingKey(t *testing.T) {
	_, err := parseFieldInfo([]string{"ra_center 1.0", "dec_center 2.0", "fieldw 3.0"})
	if err == nil {
		t.Fatal("expected error for missing fieldh")
	}
}

func TestParseMatchRecord(t *testing.T) {
	rec, err := parseMatchRecord([]string{
		"dimquads 4",
		"quadpix 1.0 2.0 3.0 4.0 5.0 6.0 7.0 8.0",
	})
	if err != nil {
		t.Fatalf("parseMatchRecord: %v", err)
	}
	if rec.DimQuads != 4 || len(rec.QuadPix) != 8 {
		t.Errorf("record = %+v", rec)
	}
}

func TestParseMatchRecordMismatch(t *testing.T) {
	_, err := parseMatchRecord([]string{"dimquads 4", "quadpix 1 2"})
	if err == nil {
		t.Fatal("expected error for short quadpix")
	}
	_, err = parseMatchRecord([]string{"quadpix 1 2"})
	if err == nil {
		t.Fatal("expected error for missing dimquads")
	}
}

func TestClassifyReason(t *testing.T) {
	ee := &execute.ExitError{ExitCode: 1, Stderr: "\nnot a FITS bintable\nmore detail\n"}
	if got := classifyReason(ee); got != "not a FITS bintable" {
		t.Errorf("reason = %q", got)
	}
	ee = &execute.ExitError{ExitCode: 2}
	if got := classifyReason(ee); got != "classifier exited with status 2" {
		t.Errorf("reason = %q", got)
	}
}
