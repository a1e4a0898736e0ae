package cli

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/spotql/internal/query"
	"github.com/aidanlsb/spotql/internal/ui"
)

// resultView is the machine-readable form of a statement result.
type resultView struct {
	Source      string                 `json:"source" yaml:"source"`
	Aggregation string                 `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
	Columns     []string               `json:"columns" yaml:"columns"`
	Rows        [][]interface{}        `json:"rows,omitempty" yaml:"rows,omitempty"`
	Aggregates  map[string]interface{} `json:"aggregates,omitempty" yaml:"aggregates,omitempty"`
	Count       int                    `json:"count" yaml:"count"`
}

func newResultView(res *query.Result) resultView {
	view := resultView{
		Source:  res.Source.String(),
		Columns: ui.Headers(res),
		Count:   res.Count(),
	}
	if res.Aggregation != query.AggregateNone {
		view.Aggregation = res.Aggregation.String()
		view.Aggregates = make(map[string]interface{}, len(res.Aggregates))
		for _, agg := range res.Aggregates {
			view.Aggregates[res.Aggregation.Label(agg.Target)] = agg.Value.Interface()
		}
		return view
	}

	view.Rows = make([][]interface{}, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v.Interface()
		}
		view.Rows[i] = cells
	}
	return view
}

// writeResult prints a result in the requested format. JSON goes through the
// standard envelope.
func writeResult(w io.Writer, format string, res *query.Result, elapsed time.Duration, warnings []Warning) error {
	switch format {
	case "json":
		outputSuccess(newResultView(res), &Meta{
			Count:       res.Count(),
			Source:      res.Source.String(),
			QueryTimeMs: elapsed.Milliseconds(),
		}, warnings...)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newResultView(res)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(w, ui.RenderResult(ui.NewDisplayContext(), res, elapsed))
		return err
	}
}

// reportStatementError prints a failed statement. In JSON mode the error is
// written as an envelope on stdout, otherwise as a status line on stderr.
func reportStatementError(w io.Writer, job *query.Job, err error) {
	code := statementErrorCode(err)
	if jsonOutput {
		var details interface{}
		if job != nil {
			details = map[string]string{"statement": job.Input}
		}
		outputError(code, err, details, "")
		return
	}
	fmt.Fprintln(w, ui.Error(err.Error()))
	if hint := suggestionFor(code); hint != "" {
		fmt.Fprintln(w, ui.Hint("  "+hint))
	}
}
