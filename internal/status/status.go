// Package status prints the user-facing progress lines of a build: a
// right-aligned, colored category tag followed by a message, in the layout
// cargo users already know.
package status

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
)

// Category tags used across the pipeline.
const (
	TagCompiling = "Compiling"
	TagFresh     = "Fresh"
	TagArtifact  = "Artifact"
	TagLinking   = "Linking"
	TagPlacing   = "Placing"
	TagSkip      = "Skip"
	TagFinished  = "Finished"
	TagNote      = "note"
)

const tagWidth = 12

// Printer is the leveled status sink used by the supervisor, the reconcile
// engine and the packager.
type Printer interface {
	// Status prints msg under a green tag.
	Status(tag, msg string)
	// StatusWithColor prints msg under a tag rendered with c.
	StatusWithColor(tag string, c color.Color, msg string)
	// Warn prints a "warning:" line.
	Warn(msg string)
	// Error prints an "error:" line.
	Error(msg string)
	// Writer exposes the underlying sink for verbatim pass-through output.
	Writer() io.Writer
}

// Console is the Printer used by the CLI. It is safe for concurrent use.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

// NewConsole returns a Console writing to out. With noColor set, tags are
// printed without escape codes.
func NewConsole(out io.Writer, noColor bool) *Console {
	return &Console{out: out, noColor: noColor}
}

func (c *Console) Status(tag, msg string) {
	c.StatusWithColor(tag, color.Green, msg)
}

func (c *Console) StatusWithColor(tag string, clr color.Color, msg string) {
	c.println(c.paint(clr, fmt.Sprintf("%*s", tagWidth, tag)) + " " + msg)
}

func (c *Console) Warn(msg string) {
	c.println(c.paint(color.Yellow, "warning") + ": " + msg)
}

func (c *Console) Error(msg string) {
	c.println(c.paint(color.Red, "error") + ": " + msg)
}

func (c *Console) Writer() io.Writer { return lockedWriter{c} }

func (c *Console) paint(clr color.Color, s string) string {
	if c.noColor {
		return s
	}
	return color.Style{clr, color.OpBold}.Sprint(s)
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, strings.TrimRight(line, "\n"))
}

type lockedWriter struct{ c *Console }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	return w.c.out.Write(p)
}
