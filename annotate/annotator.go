// annotator.go - Adds per-instruction nops comments and a running total to Z80 source

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package annotate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cpcsdk/z80tonops/logger"
	"github.com/cpcsdk/z80tonops/timing"
	"github.com/pkg/errors"
)

const (
	startMarker = "; START COUNTING"
	stopMarker  = "; STOP COUNTING"
	totalPrefix = "; Total number of nops = "

	logTag = "z80tonops"
)

// Options control the annotated output.
type Options struct {
	// ShowAlternate writes "3/2 nops" for instructions with two durations.
	ShowAlternate bool

	// TrustComments counts a hand-written "N nops" note on a line the
	// catalogue cannot classify.
	TrustComments bool

	// Markers surrounds the output with START/STOP COUNTING comments.
	Markers bool

	// Column is the column the timing comment starts at. Zero puts it two
	// spaces after the source text.
	Column int
}

// Line is the result of annotating one source line.
type Line struct {
	Text        string
	Instruction string
	Timing      timing.Timing
	Classified  bool
	FromComment bool
}

// Summary counts what happened to a stream.
type Summary struct {
	Name         string
	Lines        int
	Instructions int
	Classified   int
	Unclassified int
	FromComments int
	Total        int
}

func (s Summary) String() string {
	name := s.Name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s: %d lines, %d instructions, %d classified, %d unclassified, %d from comments, %d nops",
		name, s.Lines, s.Instructions, s.Classified, s.Unclassified, s.FromComments, s.Total)
}

// Annotator writes annotated copies of Z80 source. One Annotator can serve
// several streams at once.
type Annotator struct {
	cat  *timing.Catalogue
	log  *logger.Logger
	opts Options
}

// New returns an Annotator. A nil logger discards diagnostics.
func New(cat *timing.Catalogue, log *logger.Logger, opts Options) *Annotator {
	if log == nil {
		log = logger.Discard()
	}
	return &Annotator{cat: cat, log: log, opts: opts}
}

// position reports unclassified instructions with the place they came from.
type position struct {
	log  *logger.Logger
	name string
	line int
}

func (p *position) Unclassified(instruction string) {
	if p.name == "" {
		p.log.Logf(logTag, "timing not found for *%s*", instruction)
		return
	}
	p.log.Logf(logTag, "%s:%d: timing not found for *%s*", p.name, p.line, instruction)
}

// AnnotateLine annotates a single line.
func (a *Annotator) AnnotateLine(line string) Line {
	pos := &position{log: a.log}
	return a.annotate(line, timing.NewClassifier(a.cat, pos))
}

func (a *Annotator) annotate(line string, c *timing.Classifier) Line {
	l := Line{Text: line}

	code, comment := SplitComment(line)
	l.Instruction = clean(code)
	if l.Instruction == "" {
		return l
	}

	if a.opts.TrustComments {
		if _, ok := c.Lookup(l.Instruction); !ok {
			if n, ok := NopsFromComment(comment); ok {
				l.Timing = timing.Simple(n)
				l.FromComment = true
				return l
			}
		}
	}

	l.Timing = c.Classify(l.Instruction)
	if l.Timing.IsZero() {
		return l
	}
	l.Classified = true
	l.Text = a.format(line, l.Timing)
	return l
}

func (a *Annotator) format(line string, t timing.Timing) string {
	nops := strconv.Itoa(t.Primary())
	if a.opts.ShowAlternate {
		nops = t.String()
	}

	pad := "  "
	if a.opts.Column > 0 {
		if w := width(line); w < a.opts.Column {
			pad = strings.Repeat(" ", a.opts.Column-w)
		} else {
			pad = " "
		}
	}
	return line + pad + "; " + nops + " nops"
}

// width is the display width of s with tab stops every 8 columns.
func width(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += 8 - w%8
			continue
		}
		w++
	}
	return w
}

// Annotate copies r to w, annotating every classified instruction, and
// finishes with the total. The name is used in diagnostics.
func (a *Annotator) Annotate(name string, r io.Reader, w io.Writer) (Summary, error) {
	sum := Summary{Name: name}
	pos := &position{log: a.log, name: name}
	c := timing.NewClassifier(a.cat, pos)

	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	if a.opts.Markers {
		out.WriteString(startMarker + "\n")
	}

	for {
		raw, err := in.ReadString('\n')
		if raw != "" {
			sum.Lines++
			pos.line = sum.Lines

			text := strings.TrimRight(raw, "\r\n")
			eol := raw[len(text):]
			if eol == "" {
				eol = "\n"
			}

			l := a.annotate(text, c)
			switch {
			case l.Classified:
				sum.Instructions++
				sum.Classified++
				sum.Total += l.Timing.Primary()
			case l.FromComment:
				sum.Instructions++
				sum.FromComments++
				sum.Total += l.Timing.Primary()
			case l.Instruction != "":
				sum.Instructions++
				sum.Unclassified++
			}

			if _, werr := out.WriteString(l.Text + eol); werr != nil {
				return sum, errors.Wrapf(werr, "writing %s", describe(name))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, errors.Wrapf(err, "reading %s", describe(name))
		}
	}

	if a.opts.Markers {
		out.WriteString(stopMarker + "\n")
	}
	out.WriteString(totalPrefix + strconv.Itoa(sum.Total) + "\n")

	if err := out.Flush(); err != nil {
		return sum, errors.Wrapf(err, "writing %s", describe(name))
	}
	return sum, nil
}

// AnnotateFile annotates the file at path.
func (a *Annotator) AnnotateFile(path string, w io.Writer) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{Name: path}, errors.Wrap(err, "may not be a readable file")
	}
	defer f.Close()
	return a.Annotate(path, f, w)
}

func describe(name string) string {
	if name == "" {
		return "stdin"
	}
	return name
}
