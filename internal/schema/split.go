package schema

import (
	"strings"
	"unicode"

	"github.com/thoas/go-funk"
)

// Split cuts a SQL script into statements on semicolons. Semicolons inside
// string literals, quoted identifiers, comments and dollar-quoted bodies do
// not end a statement. Pieces holding nothing but whitespace and comments
// are dropped; the rest are returned trimmed and without the semicolon.
func Split(script string) []string {
	var (
		pieces  []string
		start   int
		hasCode bool
	)

	cut := func(end int) {
		if hasCode {
			pieces = append(pieces, script[start:end])
		}
		start = end + 1
		hasCode = false
	}

	for i := 0; i < len(script); {
		c := script[i]
		switch {
		case c == ';':
			cut(i)
			i++
		case strings.HasPrefix(script[i:], "--"):
			i = skipLineComment(script, i)
		case strings.HasPrefix(script[i:], "/*"):
			i = skipBlockComment(script, i)
		case c == '\'':
			hasCode = true
			i = skipQuoted(script, i, '\'', isEscapeString(script, i))
		case c == '"':
			hasCode = true
			i = skipQuoted(script, i, '"', false)
		case c == '$':
			hasCode = true
			// Identifiers may contain $, a dollar quote never starts inside one.
			if i > 0 && isIdentChar(script[i-1]) {
				i++
			} else if tag, ok := dollarTag(script, i); ok {
				i = skipDollarQuoted(script, i, tag)
			} else {
				i++
			}
		default:
			if !unicode.IsSpace(rune(c)) {
				hasCode = true
			}
			i++
		}
	}
	if start < len(script) {
		cut(len(script))
	}

	return funk.Map(pieces, strings.TrimSpace).([]string)
}

func skipLineComment(script string, i int) int {
	end := strings.IndexByte(script[i:], '\n')
	if end < 0 {
		return len(script)
	}

	return i + end + 1
}

// Block comments nest in PostgreSQL.
func skipBlockComment(script string, i int) int {
	depth := 0
	for i < len(script) {
		switch {
		case strings.HasPrefix(script[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(script[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}

	return len(script)
}

// isEscapeString reports whether the quote at i opens an E'...' literal.
func isEscapeString(script string, i int) bool {
	if i == 0 || (script[i-1] != 'E' && script[i-1] != 'e') {
		return false
	}

	return i == 1 || !isIdentChar(script[i-2])
}

// skipQuoted returns the index just past the closing quote. A doubled quote
// is an escaped quote; the scan resumes on it as a new literal.
func skipQuoted(script string, i int, quote byte, backslashEscapes bool) int {
	for j := i + 1; j < len(script); j++ {
		switch script[j] {
		case '\\':
			if backslashEscapes {
				j++
			}
		case quote:
			return j + 1
		}
	}

	return len(script)
}

// dollarTag matches $$ or $tag$ at i. Tags follow identifier rules, so
// positional parameters like $1 are not tags.
func dollarTag(script string, i int) (string, bool) {
	j := i + 1
	for j < len(script) && script[j] != '$' {
		c := script[j]
		if !isIdentChar(c) || (j == i+1 && c >= '0' && c <= '9') {
			return "", false
		}
		j++
	}
	if j >= len(script) {
		return "", false
	}

	return script[i : j+1], true
}

func skipDollarQuoted(script string, i int, tag string) int {
	bodyStart := i + len(tag)
	end := strings.Index(script[bodyStart:], tag)
	if end < 0 {
		return len(script)
	}

	return bodyStart + end + len(tag)
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}
