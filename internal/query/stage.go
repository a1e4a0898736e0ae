package query

import (
	"context"
	"fmt"

	"github.com/aidanlsb/spotql/internal/catalog"
)

// Loader supplies the record snapshot a statement's source needs.
type Loader interface {
	Load(ctx context.Context, source DataSource) (*catalog.Library, error)
}

// Stage is the progress of a Job.
type Stage int

const (
	StageQueued Stage = iota
	StageTokenised
	StageParsed
	StageDataLoaded
	StageExecuted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageTokenised:
		return "Tokenised"
	case StageParsed:
		return "Parsed"
	case StageDataLoaded:
		return "DataLoaded"
	case StageExecuted:
		return "Executed"
	case StageFailed:
		return "Failed"
	default:
		return "Queued"
	}
}

// Job runs one statement through the pipeline one stage per Step, so a
// caller with its own event loop can advance it between frames. Abandoning a
// Job is enough to cancel it.
type Job struct {
	Input     string
	Stage     Stage
	Tokens    []Token
	Statement *SelectStatement
	Library   *catalog.Library
	Result    *Result
	Err       error
}

// NewJob queues a statement.
func NewJob(input string) *Job {
	return &Job{Input: input, Stage: StageQueued}
}

// Done reports whether the job reached Executed or Failed.
func (j *Job) Done() bool {
	return j.Stage == StageExecuted || j.Stage == StageFailed
}

// Step advances the job by one stage. It returns the job's error once the
// job has failed.
func (j *Job) Step(ctx context.Context, loader Loader) error {
	var err error
	switch j.Stage {
	case StageQueued:
		j.Tokens, err = Tokenize(j.Input)
		j.advance(StageTokenised, err)
	case StageTokenised:
		j.Statement, err = ParseTokens(j.Tokens)
		j.advance(StageParsed, err)
	case StageParsed:
		if loader == nil {
			err = fmt.Errorf("no data loader configured")
		} else {
			j.Library, err = loader.Load(ctx, j.Statement.Source)
		}
		j.advance(StageDataLoaded, err)
	case StageDataLoaded:
		j.Result, err = Run(j.Statement, j.Library)
		// The snapshot is only valid for this execution.
		j.Library = nil
		j.advance(StageExecuted, err)
	}
	return j.Err
}

func (j *Job) advance(next Stage, err error) {
	if err != nil {
		j.Stage = StageFailed
		j.Err = err
		return
	}
	j.Stage = next
}

// RunStatement drives a job to completion.
func RunStatement(ctx context.Context, input string, loader Loader) (*Job, error) {
	job := NewJob(input)
	for !job.Done() {
		if err := ctx.Err(); err != nil {
			return job, err
		}
		if err := job.Step(ctx, loader); err != nil {
			return job, err
		}
	}
	return job, nil
}
