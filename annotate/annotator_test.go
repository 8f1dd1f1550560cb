package annotate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/cpcsdk/z80tonops/logger"
	"github.com/cpcsdk/z80tonops/timing"
)

const demo = `; demo
start
 LD A, 0
loop LD (HL), A ; store
 INC HL
 LDIR
 JR NZ, loop`

func newTestAnnotator(opts Options) (*Annotator, *strings.Builder) {
	var diag strings.Builder
	return New(timing.NewCatalogue(), logger.New(&diag, false), opts), &diag
}

// ============================================================================
// Stream Tests
// ============================================================================

func TestAnnotate_Demo(t *testing.T) {
	a, diag := newTestAnnotator(Options{Markers: true})
	var out strings.Builder
	sum, err := a.Annotate("demo.asm", strings.NewReader(demo), &out)
	if err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}

	want := `; START COUNTING
; demo
start
 LD A, 0  ; 2 nops
loop LD (HL), A ; store  ; 3 nops
 INC HL  ; 2 nops
 LDIR
 JR NZ, loop  ; 3 nops
; STOP COUNTING
; Total number of nops = 10
`
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}

	if sum.Lines != 7 || sum.Instructions != 5 || sum.Classified != 4 || sum.Unclassified != 1 || sum.Total != 10 {
		t.Errorf("summary = %+v", sum)
	}

	if diag.String() != "z80tonops: demo.asm:6: timing not found for *LDIR*\n" {
		t.Errorf("diagnostics = %q", diag.String())
	}
}

func TestAnnotate_NoMarkers(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	if _, err := a.Annotate("", strings.NewReader(" INC B\n"), &out); err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := " INC B  ; 1 nops\n; Total number of nops = 1\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAnnotate_Empty(t *testing.T) {
	a, _ := newTestAnnotator(Options{Markers: true})
	var out strings.Builder
	sum, err := a.Annotate("", strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := "; START COUNTING\n; STOP COUNTING\n; Total number of nops = 0\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if sum.Lines != 0 || sum.Total != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAnnotate_CRLFAndMissingNewline(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	if _, err := a.Annotate("", strings.NewReader(" INC B\r\n RET"), &out); err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := " INC B  ; 1 nops\r\n RET  ; 3 nops\n; Total number of nops = 4\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAnnotate_KeepsLineEndings(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	src := "; crlf\r\n INC B\r\n\r\n LDIR\r\n RET\n"
	if _, err := a.Annotate("", strings.NewReader(src), &out); err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := "; crlf\r\n INC B  ; 1 nops\r\n\r\n LDIR\r\n RET  ; 3 nops\n; Total number of nops = 4\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAnnotate_UnclassifiedPassesThrough(t *testing.T) {
	a, diag := newTestAnnotator(Options{})
	var out strings.Builder
	sum, err := a.Annotate("", strings.NewReader(" CALL draw ; 4 nops\n"), &out)
	if err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	if out.String() != " CALL draw ; 4 nops\n; Total number of nops = 0\n" {
		t.Errorf("output = %q", out.String())
	}
	if sum.Unclassified != 1 || sum.Total != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if diag.String() != "z80tonops: timing not found for *CALL DRAW*\n" {
		t.Errorf("diagnostics = %q", diag.String())
	}
}

func TestAnnotate_TrustComments(t *testing.T) {
	a, diag := newTestAnnotator(Options{TrustComments: true})
	var out strings.Builder
	sum, err := a.Annotate("", strings.NewReader(" CALL draw ; 4 nops\n INC B ; 9 nops\n"), &out)
	if err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := " CALL draw ; 4 nops\n INC B ; 9 nops  ; 1 nops\n; Total number of nops = 5\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if sum.FromComments != 1 || sum.Classified != 1 || sum.Unclassified != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if diag.Len() != 0 {
		t.Errorf("diagnostics = %q, want none", diag.String())
	}
}

func TestAnnotate_ShowAlternate(t *testing.T) {
	a, _ := newTestAnnotator(Options{ShowAlternate: true})
	var out strings.Builder
	if _, err := a.Annotate("", strings.NewReader(" JR C, loop\n JR loop\n"), &out); err != nil {
		t.Fatalf("Annotate returned error: %v", err)
	}
	want := " JR C, loop  ; 3/2 nops\n JR loop  ; 3 nops\n; Total number of nops = 6\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestAnnotate_Column(t *testing.T) {
	a, _ := newTestAnnotator(Options{Column: 16})
	tests := map[string]string{
		" LD A, 0":             " LD A, 0        ; 2 nops",
		"\tLD A, 0":            "\tLD A, 0 ; 2 nops",
		" LD BC, 0xbc00 + 12 ": " LD BC, 0xbc00 + 12  ; 3 nops",
	}
	for in, want := range tests {
		if got := a.AnnotateLine(in).Text; got != want {
			t.Errorf("AnnotateLine(%q) = %q, want %q", in, got, want)
		}
	}
}

// ============================================================================
// Error Tests
// ============================================================================

func TestAnnotate_ReadError(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	_, err := a.Annotate("", iotest.ErrReader(errors.New("boom")), &out)
	if err == nil {
		t.Fatal("Annotate should return the read error")
	}
	if !strings.Contains(err.Error(), "reading stdin") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %q", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestAnnotate_WriteError(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	_, err := a.Annotate("out.asm", strings.NewReader(" INC B\n"), failingWriter{})
	if err == nil {
		t.Fatal("Annotate should return the write error")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error = %q", err)
	}
}

func TestAnnotateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.asm")
	if err := os.WriteFile(path, []byte(" LD HL, (50)\n LD BC, (50)\n"), 0644); err != nil {
		t.Fatal(err)
	}
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	sum, err := a.AnnotateFile(path, &out)
	if err != nil {
		t.Fatalf("AnnotateFile returned error: %v", err)
	}
	if sum.Total != 11 || sum.Name != path {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAnnotateFile_Missing(t *testing.T) {
	a, _ := newTestAnnotator(Options{})
	var out strings.Builder
	_, err := a.AnnotateFile(filepath.Join(t.TempDir(), "missing.asm"), &out)
	if err == nil {
		t.Fatal("AnnotateFile should fail for a missing file")
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
	if !strings.Contains(err.Error(), "missing.asm") {
		t.Errorf("error %q does not name the file", err)
	}
}

// ============================================================================
// Line Tests
// ============================================================================

func TestAnnotateLine(t *testing.T) {
	a, _ := newTestAnnotator(Options{})

	l := a.AnnotateLine("loop JR NZ, loop ; again")
	if !l.Classified || l.Timing != timing.Dual(3, 2) || l.Instruction != "JR NZ, LOOP" {
		t.Errorf("AnnotateLine = %+v", l)
	}
	if l.Text != "loop JR NZ, loop ; again  ; 3 nops" {
		t.Errorf("Text = %q", l.Text)
	}

	l = a.AnnotateLine("label")
	if l.Classified || l.Instruction != "" || l.Text != "label" {
		t.Errorf("AnnotateLine(label) = %+v", l)
	}
}

func TestSummary_String(t *testing.T) {
	s := Summary{Lines: 3, Instructions: 2, Classified: 1, Unclassified: 1, Total: 4}
	want := "-: 3 lines, 2 instructions, 1 classified, 1 unclassified, 0 from comments, 4 nops"
	if s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}
