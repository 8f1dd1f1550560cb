// line.go - Source line preparation before classification

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

package annotate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// SplitComment splits a line into code and comment parts at the first ';'
// outside a quoted string. The comment does NOT include the leading ";".
//
// A quote straight after a letter or digit is the shadow register mark of
// AF' and does not open a string.
func SplitComment(line string) (code, comment string) {
	inQuote := false
	quoteChar := byte(0)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuote {
			switch ch {
			case '\\':
				i++
			case quoteChar:
				inQuote = false
			}
			continue
		}
		if ch == '"' || (ch == '\'' && !isPrime(line, i)) {
			inQuote = true
			quoteChar = ch
			continue
		}
		if ch == ';' {
			return line[:i], line[i+1:]
		}
	}
	return line, ""
}

func isPrime(line string, i int) bool {
	if i == 0 {
		return false
	}
	prev := rune(line[i-1])
	return unicode.IsLetter(prev) || unicode.IsDigit(prev)
}

// StripLabel removes the label from the code part of a line. Anything that
// starts in the first column is a label; instructions are indented.
func StripLabel(code string) string {
	i := strings.IndexFunc(code, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return code[i:]
}

// ExtractInstruction returns the upper-cased instruction of a source line,
// or "" when the line holds no instruction.
func ExtractInstruction(line string) string {
	code, _ := SplitComment(line)
	return clean(code)
}

func clean(code string) string {
	return strings.ToUpper(strings.TrimSpace(StripLabel(code)))
}

var nopsNote = regexp.MustCompile(`(?i)(\d+)\s*nops\b`)

// NopsFromComment finds a hand-written "N nops" note in a comment.
func NopsFromComment(comment string) (int, bool) {
	m := nopsNote.FindStringSubmatch(comment)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
