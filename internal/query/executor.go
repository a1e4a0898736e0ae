package query

import (
	"errors"
	"fmt"

	"github.com/aidanlsb/spotql/internal/catalog"
	"github.com/aidanlsb/spotql/internal/value"
)

// ErrNoRowsToAverage is returned by AVERAGE when no record passed the filter.
var ErrNoRowsToAverage = errors.New("no rows to average")

// Result is the structured output of one statement, ready for display.
type Result struct {
	Source      DataSource
	Aggregation Aggregation
	Targets     []string

	// Records holds the records that passed the filter.
	Records []catalog.KeyAccess

	// Rows is the projection of Records onto Targets (AggregateNone only).
	Rows [][]value.Value

	// Aggregates holds one entry per target (AggregateCount, AggregateAverage).
	Aggregates []Aggregate
}

// Aggregate is one aggregated column.
type Aggregate struct {
	Target string
	Value  value.Value // Int for COUNT, Float for AVERAGE
}

// AggregateMap returns the aggregates keyed by target name.
func (r *Result) AggregateMap() map[string]value.Value {
	out := make(map[string]value.Value, len(r.Aggregates))
	for _, agg := range r.Aggregates {
		out[agg.Target] = agg.Value
	}
	return out
}

// Count returns the number of records that passed the filter.
func (r *Result) Count() int { return len(r.Records) }

// Run executes stmt against a loaded library snapshot. The snapshot is only
// read.
func Run(stmt *SelectStatement, lib *catalog.Library) (*Result, error) {
	records, err := resolveSource(stmt.Source, lib)
	if err != nil {
		return nil, err
	}

	filtered, err := Filter(records, stmt.Conditions)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Source:      stmt.Source,
		Aggregation: stmt.Aggregation,
		Targets:     append([]string(nil), stmt.Targets...),
		Records:     filtered,
	}

	switch stmt.Aggregation {
	case AggregateCount:
		// Cardinality is reported once per requested column; there is no grouping.
		for _, target := range stmt.Targets {
			result.Aggregates = append(result.Aggregates, Aggregate{
				Target: target,
				Value:  value.Int(int64(len(filtered))),
			})
		}
	case AggregateAverage:
		aggs, err := average(filtered, stmt.Targets)
		if err != nil {
			return nil, err
		}
		result.Aggregates = aggs
	default:
		rows, err := project(filtered, stmt.Targets)
		if err != nil {
			return nil, err
		}
		result.Rows = rows
	}

	return result, nil
}

// Filter keeps the records that satisfy conds. A nil chain keeps everything.
func Filter(records []catalog.KeyAccess, conds *Conditions) ([]catalog.KeyAccess, error) {
	if conds == nil {
		return records, nil
	}
	kept := make([]catalog.KeyAccess, 0, len(records))
	for _, rec := range records {
		ok, err := Evaluate(rec, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

func resolveSource(src DataSource, lib *catalog.Library) ([]catalog.KeyAccess, error) {
	if lib == nil {
		lib = &catalog.Library{}
	}

	switch src.Kind {
	case SourcePlaylists:
		if !lib.HasPlaylists {
			return nil, &SourceError{Source: src, Message: "Playlist data not fetched."}
		}
		records := make([]catalog.KeyAccess, len(lib.Playlists))
		for i, p := range lib.Playlists {
			records[i] = p
		}
		return records, nil

	case SourceSavedAlbums:
		if !lib.HasAlbums {
			return nil, &SourceError{Source: src, Message: "Saved album data not fetched."}
		}
		records := make([]catalog.KeyAccess, len(lib.Albums))
		for i, a := range lib.Albums {
			records[i] = a
		}
		return records, nil

	case SourcePlaylist:
		if !lib.HasPlaylists {
			return nil, &SourceError{Source: src, Message: "Playlist data not fetched."}
		}
		p, ok := lib.FindPlaylist(src.Name)
		if !ok {
			return nil, &SourceError{Source: src, Message: fmt.Sprintf("No playlist with the name %s.", src.Name)}
		}
		return trackRecords(p.Tracks), nil

	case SourceSavedAlbum:
		if !lib.HasAlbums {
			return nil, &SourceError{Source: src, Message: "Saved album data not fetched."}
		}
		a, ok := lib.FindAlbum(src.Name)
		if !ok {
			return nil, &SourceError{Source: src, Message: fmt.Sprintf("No saved album with the name %s.", src.Name)}
		}
		return trackRecords(a.Tracks), nil
	}

	return nil, &SourceError{Source: src, Message: fmt.Sprintf("unknown data source %s", src)}
}

func trackRecords(tracks []catalog.Track) []catalog.KeyAccess {
	records := make([]catalog.KeyAccess, len(tracks))
	for i, t := range tracks {
		records[i] = t
	}
	return records
}

func project(records []catalog.KeyAccess, targets []string) ([][]value.Value, error) {
	rows := make([][]value.Value, 0, len(records))
	for _, rec := range records {
		row := make([]value.Value, len(targets))
		for i, target := range targets {
			v, err := rec.Access(target)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func average(records []catalog.KeyAccess, targets []string) ([]Aggregate, error) {
	if len(records) == 0 {
		return nil, ErrNoRowsToAverage
	}

	aggs := make([]Aggregate, 0, len(targets))
	for _, target := range targets {
		var sum float64
		for _, rec := range records {
			v, err := rec.Access(target)
			if err != nil {
				return nil, err
			}
			n, ok := v.Number()
			if !ok {
				return nil, value.NewTypeError("cannot average attribute %s of type %s, it must be numeric", target, v.Kind())
			}
			sum += n
		}
		aggs = append(aggs, Aggregate{
			Target: target,
			Value:  value.Float(sum / float64(len(records))),
		})
	}
	return aggs, nil
}
