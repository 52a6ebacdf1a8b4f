// Package store persists check reports so they can be fetched later by ID,
// for example from the HTTP API or a CI dashboard.
//
// [MemoryStore] keeps reports in process memory and is used by the CLI and
// tests. [MongoStore] keeps them in a MongoDB collection and is used by
// "fsdcheck serve --mongo".
package store

import (
	"context"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/report"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Store persists reports.
type Store interface {
	// Save inserts or replaces the report with r.ID.
	Save(ctx context.Context, r *report.Report) error

	// Get returns the report with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*report.Report, error)

	// List returns up to limit reports, newest first.
	List(ctx context.Context, limit int) ([]*report.Report, error)

	Close(ctx context.Context) error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "report %q not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
