package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/spotql/internal/api"
	"github.com/aidanlsb/spotql/internal/config"
	"github.com/aidanlsb/spotql/internal/query"
)

func runJob(t *testing.T, input string) *query.Job {
	t.Helper()
	sess := newTestSession(t, testLibrary())
	job, err := query.RunStatement(context.Background(), input, sess.loader)
	if err != nil {
		t.Fatalf("RunStatement(%q): %v", input, err)
	}
	return job
}

func TestNewResultView(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  resultView
	}{
		{
			name:  "rows",
			input: "SELECT name, popularity FROM PLAYLISTS;",
			want: resultView{
				Source:  "Playlists",
				Columns: []string{"name", "popularity"},
				Rows: [][]interface{}{
					{"Road Trip", int64(66)},
					{"Gym", int64(8)},
				},
				Count: 2,
			},
		},
		{
			name:  "count",
			input: `SELECT COUNT(name) FROM PLAYLISTS WHERE popularity > 10;`,
			want: resultView{
				Source:      "Playlists",
				Aggregation: "Count",
				Columns:     []string{"COUNT(name)"},
				Aggregates:  map[string]interface{}{"COUNT(name)": int64(1)},
				Count:       1,
			},
		},
		{
			name:  "average",
			input: `SELECT AVERAGE(popularity) FROM PLAYLIST("Road Trip");`,
			want: resultView{
				Source:      "Playlist(Road Trip)",
				Aggregation: "Average",
				Columns:     []string{"AVERAGE(popularity)"},
				Aggregates:  map[string]interface{}{"AVERAGE(popularity)": float64(66)},
				Count:       2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := runJob(t, tt.input)
			got := newResultView(job.Result)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("view mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteResultYAML(t *testing.T) {
	job := runJob(t, "SELECT name FROM ALBUMS;")

	var buf bytes.Buffer
	if err := writeResult(&buf, "yaml", job.Result, time.Millisecond, nil); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "source: SavedAlbums\n") {
		t.Errorf("unexpected yaml:\n%s", buf.String())
	}

	var got resultView
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	want := resultView{
		Source:  "SavedAlbums",
		Columns: []string{"name"},
		Rows:    [][]interface{}{{"AM"}},
		Count:   1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteResultJSONEnvelope(t *testing.T) {
	setGlobals(t, true, "")
	job := runJob(t, "SELECT name FROM ALBUMS;")

	out := captureStdout(t, func() {
		warnings := []Warning{{Code: WarnStaleData, Message: "old data"}}
		if err := writeResult(nil, "json", job.Result, 12*time.Millisecond, warnings); err != nil {
			t.Fatalf("writeResult: %v", err)
		}
	})

	var resp struct {
		OK       bool       `json:"ok"`
		Data     resultView `json:"data"`
		Warnings []Warning  `json:"warnings"`
		Meta     Meta       `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	if !resp.OK || resp.Data.Count != 1 || resp.Meta.Count != 1 || resp.Meta.QueryTimeMs != 12 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != WarnStaleData {
		t.Errorf("warnings = %+v", resp.Warnings)
	}
}

func TestReportStatementErrorJSON(t *testing.T) {
	setGlobals(t, true, "")
	job := query.NewJob("SELECT name FROM PLAYLISTS")
	err := &query.LexError{Message: "statement not terminated"}

	out := captureStdout(t, func() { reportStatementError(nil, job, err) })

	var resp Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	if resp.OK || resp.Error == nil || resp.Error.Code != ErrLex {
		t.Fatalf("unexpected response: %s", out)
	}
	if resp.Error.Suggestion == "" {
		t.Error("expected a suggestion for lex errors")
	}
}

func TestStatementErrorCode(t *testing.T) {
	src := query.PlaylistsSource()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"lex", &query.LexError{Message: "x"}, ErrLex},
		{"source", &query.SourceError{Source: src, Message: "Playlist data not fetched.", Err: errors.New("offline")}, ErrSource},
		{"logged out", &query.SourceError{Source: src, Err: fmt.Errorf("get access token: %w", config.ErrNotLoggedIn)}, ErrNotLoggedIn},
		{"token rejected", &query.SourceError{Source: src, Err: api.ErrUnauthorized}, ErrNotLoggedIn},
		{"no rows", query.ErrNoRowsToAverage, ErrNoRows},
		{"other", errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		if got := statementErrorCode(tt.err); got != tt.want {
			t.Errorf("%s: statementErrorCode = %q, want %q", tt.name, got, tt.want)
		}
	}
}
