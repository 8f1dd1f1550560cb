package logger

import (
	"strings"
	"sync"
	"testing"
)

func TestLog(t *testing.T) {
	var b strings.Builder
	l := New(&b, false)
	l.Log("annotate", "timing not found for *LDIR*")
	l.Logf("annotate", "line %d", 12)

	want := "annotate: timing not found for *LDIR*\nannotate: line 12\n"
	if b.String() != want {
		t.Errorf("output = %q, want %q", b.String(), want)
	}
	if l.Count() != 2 {
		t.Errorf("Count() = %d, want 2", l.Count())
	}
}

func TestLog_NewlinesRemoved(t *testing.T) {
	var b strings.Builder
	l := New(&b, false)
	l.Log("ta\ng", "two\nlines")
	if b.String() != "tag: twolines\n" {
		t.Errorf("output = %q", b.String())
	}
}

func TestLog_Color(t *testing.T) {
	var b strings.Builder
	l := New(&b, true)
	l.Log("tag", "detail")
	out := b.String()
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("output %q has no escape sequence", out)
	}
	if !strings.HasSuffix(out, ": detail\n") {
		t.Errorf("output %q should end with the plain detail", out)
	}
}

func TestLog_Concurrent(t *testing.T) {
	var b strings.Builder
	l := New(&b, false)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Log("tag", "detail")
			}
		}()
	}
	wg.Wait()
	if l.Count() != 100 {
		t.Errorf("Count() = %d, want 100", l.Count())
	}
	if n := strings.Count(b.String(), "tag: detail\n"); n != 100 {
		t.Errorf("%d complete lines, want 100", n)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Log("tag", "detail")
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestParseColorMode(t *testing.T) {
	tests := map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"Always": ColorAlways,
		"never":  ColorNever,
	}
	for s, want := range tests {
		got, err := ParseColorMode(s)
		if err != nil {
			t.Errorf("ParseColorMode(%q) returned error: %v", s, err)
		}
		if got != want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseColorMode("sometimes"); err == nil {
		t.Error("ParseColorMode(\"sometimes\") should return error")
	}
}
