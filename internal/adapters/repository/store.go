// Package repository holds the dataset snapshot the charts read from.
package repository

import (
	"context"

	"github.com/okian/marquee/internal/domain/model"
)

// Snapshot is an immutable, committed dataset. Readers share it; nothing
// mutates a snapshot after it is published.
type Snapshot struct {
	Dataset    model.Dataset
	Generation uint64
	// Dropped holds relationship tuples whose titles were missing.
	Dropped []model.Relationship
}

// Store publishes dataset snapshots under generation numbers.
type Store interface {
	// Begin reserves the next generation for a reload. Reserving a new
	// generation supersedes every earlier one that has not committed yet.
	Begin() uint64

	// Commit publishes ds as generation gen. It fails with ErrSuperseded
	// when a newer generation has been reserved, and with the context's
	// error when ctx is done.
	Commit(ctx context.Context, gen uint64, ds model.Dataset, dropped []model.Relationship) (Snapshot, error)

	// Current returns the latest committed snapshot, or ErrNoSnapshot.
	Current(ctx context.Context) (Snapshot, error)
}
