// logger.go - Tagged diagnostic output

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ColorMode selects when tags are coloured.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// ParseColorMode accepts "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, errors.Errorf("unknown colour mode %q", s)
}

// Logger writes "tag: detail" lines. It is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	paint func(string) string
	count int
}

// New returns a Logger writing to out. When color is set tags are wrapped in
// ANSI colour sequences.
func New(out io.Writer, color bool) *Logger {
	l := &Logger{out: out}
	if color {
		l.paint = ansi.ColorFunc("yellow+b")
	}
	return l
}

// NewStderr returns a Logger for standard error. ColorAuto colours only when
// stderr is a terminal.
func NewStderr(mode ColorMode) *Logger {
	color := mode == ColorAlways
	if mode == ColorAuto {
		color = term.IsTerminal(int(os.Stderr.Fd()))
	}
	return New(colorable.NewColorableStderr(), color)
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, false)
}

// Log writes a single entry. Newlines are removed from tag and detail so that
// every entry is one line.
func (l *Logger) Log(tag, detail string) {
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")
	if l.paint != nil {
		tag = l.paint(tag)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	io.WriteString(l.out, tag+": "+detail+"\n")
}

// Logf writes a single formatted entry.
func (l *Logger) Logf(tag, detail string, args ...interface{}) {
	l.Log(tag, fmt.Sprintf(detail, args...))
}

// Count is the number of entries written so far.
func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
