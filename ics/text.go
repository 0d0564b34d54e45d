package ics

import (
	"fmt"
	"strings"
	"time"
)

// maxLineOctets is the RFC 5545 content line limit, excluding CRLF.
const maxLineOctets = 75

// EscapeText backslash-escapes the characters that terminate or structure a
// content line value. The backslash itself is escaped first so the mapping
// stays unambiguous.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	return s
}

// UnescapeText is the exact inverse of EscapeText. Escaped backslashes are
// resolved in the same left-to-right scan, so `\\n` decodes to `\n` literal
// text rather than a newline. Unknown escape sequences are left untouched.
func UnescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\', ';', ',':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// FoldLine folds a content line longer than 75 octets. The first segment
// keeps 75 bytes, every continuation carries 74 bytes behind a single space,
// and segments are joined with CRLF per RFC 5545 section 3.1.
func FoldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	segments := []string{line[:maxLineOctets]}
	rest := line[maxLineOctets:]
	for len(rest) > maxLineOctets-1 {
		segments = append(segments, " "+rest[:maxLineOctets-1])
		rest = rest[maxLineOctets-1:]
	}
	if rest != "" {
		segments = append(segments, " "+rest)
	}
	return strings.Join(segments, "\r\n")
}

// splitLines splits raw document text into physical lines, accepting CRLF
// or bare LF terminators.
func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// UnfoldLines turns physical lines into logical content lines by joining
// continuations (lines starting with a space or tab) onto their
// predecessor. Exactly one marker byte is stripped per continuation; any
// further whitespace is value content and must survive.
func UnfoldLines(text string) []string {
	return unfoldBlock(splitLines(text))
}

// unfoldBlock is UnfoldLines over already-split physical lines.
func unfoldBlock(physical []string) []string {
	var lines []string
	for _, line := range physical {
		if len(lines) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatDateTimeUTC renders a timestamp in the compact UTC form
// YYYYMMDDTHHMMSSZ used for DTSTART, DTEND and friends.
func FormatDateTimeUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// FormatDateUTC renders a date-only value as YYYYMMDD in UTC.
func FormatDateUTC(t time.Time) string {
	return t.UTC().Format("20060102")
}

var dateLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"20060102",
	time.RFC3339,
}

// ParseDate parses the compact iCalendar date and date-time forms, falling
// back to RFC 3339. Unrecognized strings are rejected rather than guessed
// at; callers that tolerate bad dates drop the surrounding block instead.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date value %q", value)
}
