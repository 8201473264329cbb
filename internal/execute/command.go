// Package execute renders and runs external command lines. Commands are
// built as typed process specs joined by pipe and redirection connectors;
// shell quoting is applied once, per argument, when the command is
// rendered to the single string handed to the shell.
package execute

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ProcessSpec is one external program invocation.
type ProcessSpec struct {
	Program string
	Args    []string
}

type connector int

const (
	connNone connector = iota
	connPipe
)

type segment struct {
	conn connector
	proc ProcessSpec
}

// Command is an ordered chain of process specs, optionally piped together
// and optionally redirected into an output file.
type Command struct {
	segments []segment
	redirect string
}

// NewCommand starts a command chain with its first process.
func NewCommand(proc ProcessSpec) *Command {
	return &Command{segments: []segment{{conn: connNone, proc: proc}}}
}

// Pipe appends a process fed from the previous one's stdout.
func (c *Command) Pipe(proc ProcessSpec) *Command {
	c.segments = append(c.segments, segment{conn: connPipe, proc: proc})
	return c
}

// RedirectTo sends the final process's stdout to path.
func (c *Command) RedirectTo(path string) *Command {
	c.redirect = path
	return c
}

// String renders the chain to a single shell command line with every
// argument quoted.
func (c *Command) String() string {
	var b strings.Builder
	for _, seg := range c.segments {
		if seg.conn == connPipe {
			b.WriteString(" | ")
		}
		b.WriteString(Quote(seg.proc.Program))
		for _, a := range seg.proc.Args {
			b.WriteByte(' ')
			b.WriteString(Quote(a))
		}
	}
	if c.redirect != "" {
		b.WriteString(" > ")
		b.WriteString(Quote(c.redirect))
	}
	return b.String()
}

const shellSpecial = " \t\n\"'`\\$&|;<>()*?[]#~{}!"

// Quote returns s in a form safe to embed in a shell command line.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// FindExecutable resolves name to an executable path. The directory of
// the running binary is checked first so a suite installed side by side
// wins over anything else on PATH.
func FindExecutable(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("executable %q: %w", name, err)
		}
		return name, nil
	}
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), name)
		if info, err := os.Stat(sibling); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return sibling, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("executable %q not found: %w", name, err)
	}
	return path, nil
}
