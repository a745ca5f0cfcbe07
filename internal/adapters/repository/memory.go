package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/marquee/internal/domain/model"
)

// MemoryStore keeps the current snapshot behind an atomic pointer so reads
// never block on a reload.
type MemoryStore struct {
	mu       sync.Mutex // serializes commits
	reserved atomic.Uint64
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin implements Store.
func (s *MemoryStore) Begin() uint64 {
	return s.reserved.Add(1)
}

// Commit implements Store.
func (s *MemoryStore) Commit(ctx context.Context, gen uint64, ds model.Dataset, dropped []model.Relationship) (Snapshot, error) {
	const op = "repository.commit"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if latest := s.reserved.Load(); gen != latest {
		return Snapshot{}, fmt.Errorf("%s: generation %d, latest %d: %w", op, gen, latest, ErrSuperseded)
	}
	if ds.LoadedAt.IsZero() {
		ds.LoadedAt = s.now()
	}

	snap := &Snapshot{Dataset: ds, Generation: gen, Dropped: dropped}
	s.snapshot.Store(snap)
	return *snap, nil
}

// Current implements Store.
func (s *MemoryStore) Current(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	snap := s.snapshot.Load()
	if snap == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return *snap, nil
}

// Generation returns the generation of the committed snapshot, zero if none.
func (s *MemoryStore) Generation() uint64 {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.Generation
	}
	return 0
}
