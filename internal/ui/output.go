package ui

import (
	"fmt"
	"time"
)

// Status line symbols. Color is reserved for tables and headers.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

func Success(msg string) string { return SymbolSuccess + " " + msg }

func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

func Error(msg string) string { return SymbolError + " " + msg }

func Warning(msg string) string { return SymbolWarning + " " + msg }

func Info(msg string) string { return SymbolInfo + " " + msg }

// Header renders a section title, e.g. above the docs topic list.
func Header(msg string) string { return Bold.Render(msg) }

// Hint renders secondary text: footers, timestamps, suggestions.
func Hint(msg string) string { return Muted.Render(msg) }

// Plural formats a count with its noun: "1 row", "3 rows".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ResultFooter is the line under a result table: how many records matched,
// and how long the statement took when known.
func ResultFooter(matched int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "(" + Plural(matched, "row") + ")"
	}
	return fmt.Sprintf("(%s in %s)", Plural(matched, "row"), roundElapsed(elapsed))
}

// roundElapsed keeps two significant units at most: 840µs, 12ms, 1.3s.
func roundElapsed(d time.Duration) time.Duration {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond)
	case d < time.Second:
		return d.Round(time.Millisecond)
	default:
		return d.Round(100 * time.Millisecond)
	}
}
