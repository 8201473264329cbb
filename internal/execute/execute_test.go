package execute

import (
	"context"
	"strings"
	"testing"
)

func TestQuote(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"with space", "'with space'"},
		{"", "''"},
		{"a'b", `'a'\''b'`},
		{"semi;colon", "'semi;colon'"},
		{"pipe|char", "'pipe|char'"},
		{"/usr/bin/plotxy", "/usr/bin/plotxy"},
		{"$HOME", "'$HOME'"},
	}
	for _, c := range cases {
		if got := Quote(c.in); got != c.want {
			t.Errorf("Quote(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	cmd := NewCommand(ProcessSpec{Program: "plotxy", Args: []string{"-i", "my field.axy", "-C", "red"}}).
		Pipe(ProcessSpec{Program: "plotquad", Args: []string{"-I", "-"}}).
		RedirectTo("out dir/field-indx.png")

	want := "plotxy -i 'my field.axy' -C red | plotquad -I - > 'out dir/field-indx.png'"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCommandSingleProcess(t *testing.T) {
	cmd := NewCommand(ProcessSpec{Program: "curl", Args: []string{"--silent", "--output", "a.fits", "http://host/a.fits"}})
	want := "curl --silent --output a.fits 'http://host/a.fits'"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRunCaptureLines(t *testing.T) {
	r := &Runner{}
	out, err := r.RunCapture(context.Background(), "printf 'one\\ntwo\\n'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Lines) != 2 || out.Lines[0] != "one" || out.Lines[1] != "two" {
		t.Fatalf("unexpected lines: %#v", out.Lines)
	}
}

func TestRunCaptureEmptyOutput(t *testing.T) {
	r := &Runner{}
	out, err := r.RunCapture(context.Background(), "true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Lines) != 0 {
		t.Fatalf("expected no lines, got %#v", out.Lines)
	}
}

func TestRunNonzeroExit(t *testing.T) {
	r := &Runner{}
	out, err := r.RunCapture(context.Background(), "exit 7")
	if err == nil {
		t.Fatal("expected error")
	}
	if out.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", out.ExitCode)
	}
	if IsCancelled(err) {
		t.Error("plain failure must not read as cancellation")
	}
	if !strings.Contains(err.Error(), "exit 7") {
		t.Errorf("error should carry the command line, got %q", err)
	}
}

func TestRunSigtermIsCancelled(t *testing.T) {
	r := &Runner{}
	out, err := r.RunCapture(context.Background(), "kill -TERM $$")
	if err == nil {
		t.Fatal("expected error")
	}
	if !out.Cancelled || !IsCancelled(err) {
		t.Error("SIGTERM termination should report cancellation")
	}
}

func TestRunOtherSignalNotCancelled(t *testing.T) {
	r := &Runner{}
	out, err := r.RunCapture(context.Background(), "kill -HUP $$")
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Cancelled || IsCancelled(err) {
		t.Error("non-SIGTERM signals must not read as cancellation")
	}
}
