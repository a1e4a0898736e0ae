package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonOutput switches every command to a single JSON envelope on stdout.
var jsonOutput bool

// Response is the envelope written in JSON mode.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is the error half of a failed envelope. Code is one of the
// constants in errors.go.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem met while serving the command, such as
// stale data served after a failed refresh.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes a statement run. Other commands set Count at most.
type Meta struct {
	Count       int    `json:"count,omitempty"`
	Source      string `json:"source,omitempty"`
	QueryTimeMs int64  `json:"query_time_ms,omitempty"`
}

// writeEnvelope encodes resp to stdout. HTML escaping is off so statements
// keep their < and > operators readable.
func writeEnvelope(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

// outputSuccess writes a successful envelope with any warnings collected
// while the command ran.
func outputSuccess(data interface{}, meta *Meta, warnings ...Warning) {
	writeEnvelope(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

// outputError writes a failed envelope. An empty suggestion falls back to the
// default hint for code.
func outputError(code string, err error, details interface{}, suggestion string) {
	if suggestion == "" {
		suggestion = suggestionFor(code)
	}
	writeEnvelope(Response{
		Error: &ErrorInfo{
			Code:       code,
			Message:    err.Error(),
			Details:    details,
			Suggestion: suggestion,
		},
	})
}

func isJSONOutput() bool {
	return jsonOutput
}

// handleError reports err in the active output mode. In JSON mode the
// envelope is the report and nil is returned so cobra prints nothing more.
func handleError(code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(code, err, nil, suggestion)
		return nil
	}
	if suggestion == "" {
		suggestion = suggestionFor(code)
	}
	if suggestion != "" {
		return fmt.Errorf("%w\n\n%s", err, suggestion)
	}
	return err
}
