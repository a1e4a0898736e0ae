package ui

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aidanlsb/spotql/internal/query"
	"github.com/aidanlsb/spotql/internal/value"
)

const (
	minCellWidth = 8
	leftMargin   = 2
)

// Headers returns the column headers of a result: the targets for row
// results, COUNT(x) or AVERAGE(x) for aggregations.
func Headers(res *query.Result) []string {
	headers := make([]string, len(res.Targets))
	for i, target := range res.Targets {
		headers[i] = res.Aggregation.Label(target)
	}
	return headers
}

// Cells formats a result as display strings, one slice per row. Aggregations
// produce a single row.
func Cells(res *query.Result) [][]string {
	if res.Aggregation != query.AggregateNone {
		row := make([]string, len(res.Aggregates))
		for i, agg := range res.Aggregates {
			row[i] = FormatAggregate(agg.Value)
		}
		return [][]string{row}
	}

	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = v.String()
		}
		rows[i] = cells
	}
	return rows
}

// FormatAggregate renders an aggregate value; averages use two decimals.
func FormatAggregate(v value.Value) string {
	if f, ok := v.AsFloat(); ok {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return v.String()
}

// RenderResult renders a result as a table fitted to the display width.
// Row results get a muted footer with the row count and elapsed time.
func RenderResult(d *DisplayContext, res *query.Result, elapsed time.Duration) string {
	headers := Headers(res)
	rows := Cells(res)

	maxCell := cellBudget(d, len(headers))
	for _, row := range rows {
		for j := range row {
			row[j] = truncate(row[j], maxCell)
		}
	}

	out := renderTable(headers, rows)
	if res.Aggregation == query.AggregateNone {
		out += "\n" + Hint(ResultFooter(len(rows), elapsed))
	}
	return out + "\n"
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Muted).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return AccentBold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// cellBudget spreads the available width over cols columns, accounting for
// one border and two padding characters per column.
func cellBudget(d *DisplayContext, cols int) int {
	if cols == 0 || d == nil {
		return 0
	}
	avail := d.AvailableWidth(leftMargin) - 1 - cols*3
	w := avail / cols
	if w < minCellWidth {
		w = minCellWidth
	}
	return w
}

// truncate shortens s to at most max runes, ending with an ellipsis.
// max <= 0 means no limit.
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
