package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return WrapWidth(text, DefaultWidth)
}

// WrapWidth word-wraps text to width. A width below one disables wrapping.
func WrapWidth(text string, width int) string {
	if width < 1 {
		return text
	}
	return wordwrap.String(text, width)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Bar draws a fixed width gauge of filled over total.
func Bar(filled, total float64, width int) string {
	if width < 1 {
		return ""
	}
	n := 0
	if total > 0 {
		n = int(filled / total * float64(width))
	}
	n = min(max(n, 0), width)
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", width-n) + "]"
}
