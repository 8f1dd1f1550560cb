// main.go - Command line entry point for the Z80 timing annotator

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cpcsdk/z80tonops/annotate"
	"github.com/cpcsdk/z80tonops/config"
	"github.com/cpcsdk/z80tonops/logger"
	"github.com/cpcsdk/z80tonops/timing"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	output    string
	script    string
	noConfig  bool
	alternate bool
	trust     bool
	noMarkers bool
	column    int
	color     string
	jobs      int
	stats     bool
	dump      bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o options

	flagSet := flag.NewFlagSet("z80tonops", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&o.output, "o", "", "Output file (default: standard output)")
	flagSet.StringVar(&o.script, "config", "", "Lua config script (default: config.lua in the user config folder)")
	flagSet.BoolVar(&o.noConfig, "no-config", false, "Ignore the user config script")
	flagSet.BoolVar(&o.alternate, "alternate", false, "Show both durations of conditional jumps (3/2 nops)")
	flagSet.BoolVar(&o.trust, "trust-comments", false, "Count \"N nops\" comments on unknown instructions")
	flagSet.BoolVar(&o.noMarkers, "no-markers", false, "Omit the START/STOP COUNTING comments")
	flagSet.IntVar(&o.column, "column", 0, "Column for the timing comment (0: two spaces after the line)")
	flagSet.StringVar(&o.color, "color", "auto", "Colour diagnostics: auto, always or never")
	flagSet.IntVar(&o.jobs, "jobs", 0, "Files annotated at once (default: number of CPUs)")
	flagSet.BoolVar(&o.stats, "stats", false, "Print per-file statistics")
	flagSet.BoolVar(&o.dump, "dump", false, "Print the instruction catalogue and exit")

	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: z80tonops [options] [file.asm ...]\n\nAnnotates Z80 source with the duration of each instruction in nops.\nWith no file the source is read from standard input.\n\nOptions:\n")
		flagSet.SetOutput(stderr)
		flagSet.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  z80tonops loop.asm\n")
		fmt.Fprintf(stderr, "  z80tonops -alternate -column 40 -o loop_nops.asm loop.asm\n")
		fmt.Fprintf(stderr, "  cat loop.asm | z80tonops -no-markers\n")
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	cat := timing.Default()
	if o.dump {
		dump(stdout, cat)
		return 0
	}

	cfg, err := loadConfig(flagSet, o)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	files := flagSet.Args()
	if len(files) == 0 && isTerminal(stdin) {
		flagSet.Usage()
		return 1
	}

	mode, _ := logger.ParseColorMode(cfg.Color)
	log := newLogger(stderr, mode)

	a := annotate.New(cat, log, annotate.Options{
		ShowAlternate: cfg.ShowAlternate,
		TrustComments: cfg.TrustComments,
		Markers:       cfg.Markers,
		Column:        cfg.Column,
	})

	var (
		out  bytes.Buffer
		sums []annotate.Summary
	)
	if len(files) == 0 {
		var sum annotate.Summary
		sum, err = a.Annotate("", stdin, &out)
		sums = append(sums, sum)
	} else {
		sums, err = annotateFiles(a, files, cfg.Jobs, &out)
	}
	if err == nil {
		if o.output == "" {
			_, err = out.WriteTo(stdout)
		} else {
			err = replaceFile(o.output, out.Bytes())
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if o.stats {
		for _, s := range sums {
			fmt.Fprintln(stderr, s)
		}
		if n := log.Count(); n > 0 {
			fmt.Fprintf(stderr, "%d diagnostic(s)\n", n)
		}
	}
	return 0
}

// loadConfig layers defaults, the config script and the flags given on the
// command line.
func loadConfig(flagSet *flag.FlagSet, o options) (config.Config, error) {
	cfg := config.Default()

	switch {
	case o.script != "":
		if err := cfg.LoadFile(o.script); err != nil {
			return cfg, err
		}
	case !o.noConfig:
		if _, err := cfg.LoadUser(); err != nil {
			return cfg, err
		}
	}

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "alternate":
			cfg.ShowAlternate = o.alternate
		case "trust-comments":
			cfg.TrustComments = o.trust
		case "no-markers":
			cfg.Markers = !o.noMarkers
		case "column":
			cfg.Column = o.column
		case "color":
			cfg.Color = o.color
		case "jobs":
			cfg.Jobs = o.jobs
		}
	})

	return cfg, cfg.Validate()
}

// annotateFiles annotates files concurrently and writes the results to w in
// argument order. Nothing is written when any file fails.
func annotateFiles(a *annotate.Annotator, files []string, jobs int, w io.Writer) ([]annotate.Summary, error) {
	sums := make([]annotate.Summary, len(files))
	bufs := make([]bytes.Buffer, len(files))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range files {
		i, path := i, path // per-iteration copy; go directive predates 1.22 loopvar semantics
		g.Go(func() error {
			var err error
			sums[i], err = a.AnnotateFile(path, &bufs[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range bufs {
		if _, err := bufs[i].WriteTo(w); err != nil {
			return sums, errors.Wrap(err, "writing output")
		}
	}
	return sums, nil
}

// replaceFile writes data to a temporary file next to path and renames it
// over path, so that path is either left alone or fully written. The output
// may name one of the inputs.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".z80tonops-*")
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "writing %s", path)
}

func dump(w io.Writer, cat *timing.Catalogue) {
	cs := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                3,
		DisableMethods:          true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	for i, e := range cat.Entries() {
		fmt.Fprintf(w, "%2d %s\n", i, e)
		cs.Fdump(w, e.Pattern)
	}
}

func newLogger(w io.Writer, mode logger.ColorMode) *logger.Logger {
	if w == io.Writer(os.Stderr) {
		return logger.NewStderr(mode)
	}
	return logger.New(w, mode == logger.ColorAlways)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
