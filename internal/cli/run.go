package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/spotql/internal/query"
	"github.com/aidanlsb/spotql/internal/store"
	"github.com/aidanlsb/spotql/internal/ui"
)

var stderrIsTerminal = func() bool { return isatty.IsTerminal(os.Stderr.Fd()) }

// executeStatement drives one statement through its stages, printing debug
// output between stages and a spinner while data loads. The outcome is
// recorded in the history table.
func executeStatement(ctx context.Context, s *session, input string) (*query.Job, error) {
	job := query.NewJob(input)
	for !job.Done() {
		if err := ctx.Err(); err != nil {
			return job, err
		}

		var spinner *ui.Spinner
		if job.Stage == query.StageParsed && !jsonOutput && stderrIsTerminal() {
			spinner = ui.NewSpinner(os.Stderr, "Loading "+job.Statement.Source.String())
			spinner.Start()
		}
		err := job.Step(ctx, s.loader)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			break
		}

		if debugEnabled() {
			printDebug(job)
		}
	}

	recordHistory(s, job)
	return job, job.Err
}

func printDebug(job *query.Job) {
	switch job.Stage {
	case query.StageTokenised:
		parts := make([]string, len(job.Tokens))
		for i, tok := range job.Tokens {
			parts[i] = tok.String()
		}
		fmt.Fprintln(os.Stderr, ui.Hint("tokens: "+strings.Join(parts, " ")))
	case query.StageParsed:
		fmt.Fprintln(os.Stderr, ui.Hint("statement: "+job.Statement.String()))
	}
}

func recordHistory(s *session, job *query.Job) {
	entry := store.HistoryEntry{
		Statement: strings.TrimSpace(job.Input),
		RanAt:     time.Now(),
	}
	if job.Err != nil {
		entry.Code = statementErrorCode(job.Err)
	} else if job.Result != nil {
		entry.RowCount = job.Result.Count()
	}
	if _, err := s.store.AddHistory(entry); err != nil {
		s.warn(WarnHistoryFailure, err.Error())
	}
}

// terminate appends the statement terminator when it is missing.
func terminate(statement string) string {
	statement = strings.TrimSpace(statement)
	if strings.HasSuffix(statement, ";") {
		return statement
	}
	return statement + ";"
}
