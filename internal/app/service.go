// Package service wires the dataset, the render engine and the dashboard
// sessions together behind the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/okian/marquee/internal/adapters/dataset"
	eventqueue "github.com/okian/marquee/internal/adapters/mq/queue"
	"github.com/okian/marquee/internal/adapters/mq/worker"
	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/adapters/repository"
	"github.com/okian/marquee/internal/domain/annotations"
	"github.com/okian/marquee/internal/domain/highlight"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/relations"
	"github.com/okian/marquee/internal/domain/types"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultQueueSize      = 1024
	defaultMaxSessions    = 256
	defaultResizeDebounce = 120 * time.Millisecond
	defaultWidth          = 1200
	defaultHeight         = 600
)

// Service owns the committed dataset snapshot and every open session.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	source   dataset.Source
	loader   *dataset.Loader
	engine   *render.Engine
	rels     []model.Relationship
	queue    *eventqueue.InMemoryQueue
	loop     *worker.EventLoop
	stopLoop context.CancelFunc

	// Sessions; guarded by sessMu, which also guards graph.
	sessMu   sync.RWMutex
	sessions map[string]*session
	graph    highlight.Graph

	// Configuration
	dataSource      string
	annotationsFile string
	queueSize       int
	maxSessions     int
	resizeDebounce  time.Duration
	width, height   float64
	engineOpts      []render.Option

	started bool
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		store:          repository.NewMemoryStore(),
		sessions:       make(map[string]*session),
		graph:          highlight.Graph{},
		dataSource:     dataset.SampleLocation,
		queueSize:      defaultQueueSize,
		maxSessions:    defaultMaxSessions,
		resizeDebounce: defaultResizeDebounce,
		width:          defaultWidth,
		height:         defaultHeight,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = dataset.NewSource(s.dataSource)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Start loads the static tables, starts the event loop and performs the
// first dataset load.
func (s *Service) Start(ctx context.Context) error {
	const op = "service.start"

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info(ctx, "starting dashboard service", logger.String("source", s.source.String()))

	table, err := s.loadAnnotations()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	rels, err := relations.Embedded()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	s.rels = rels
	s.engine = render.NewEngine(append(s.engineOpts, render.WithAnnotations(table))...)
	s.loader = dataset.NewLoader(s.source,
		dataset.WithLogger(s.logger.Named("dataset")),
		dataset.WithClock(s.now),
	)
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.loop = worker.NewEventLoop(s.queue, s, worker.WithLogger(s.logger.Named("events")))

	loopCtx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	go s.loop.Run(loopCtx)

	s.started = true
	s.mu.Unlock()

	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info(ctx, "dashboard service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("relationships", len(rels)),
		logger.Int("annotations", len(table)),
	)
	return nil
}

func (s *Service) loadAnnotations() (annotations.Table, error) {
	if s.annotationsFile != "" {
		return annotations.Load(s.annotationsFile)
	}
	return annotations.Embedded()
}

// Stop applies queued events, stops the event loop and drops every session.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping dashboard service")

	var result *multierror.Error
	if err := s.loop.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.queue.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	s.stopLoop()

	s.sessMu.Lock()
	for id, sess := range s.sessions {
		sess.resize.Stop()
		delete(s.sessions, id)
	}
	s.sessMu.Unlock()
	metrics.UpdateSessionsActive(0)

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
	return result.ErrorOrNil()
}

// Reload fetches every dataset file and commits the result as a new
// generation. A reload overtaken by a newer one fails with
// repository.ErrSuperseded; one whose context ends fails with the context's
// error. Neither changes the committed snapshot.
func (s *Service) Reload(ctx context.Context) (types.ReloadResult, error) {
	const op = "service.reload"

	s.mu.RLock()
	started, loader, rels := s.started, s.loader, s.rels
	s.mu.RUnlock()
	if !started {
		return types.ReloadResult{}, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}

	gen := s.store.Begin()
	ds, loadErr := loader.LoadAll(ctx)

	conns, dropped := relations.Resolve(rels, ds.Titles)
	ds.Connections = conns
	for _, r := range dropped {
		s.logger.Debug(ctx, "relationship dropped",
			logger.String("type", string(r.Type)),
			logger.String("from", r.From),
			logger.String("to", r.To))
	}

	snap, err := s.store.Commit(ctx, gen, ds, dropped)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSuperseded):
			metrics.RecordDatasetReload("superseded")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			metrics.RecordDatasetReload("cancelled")
		default:
			metrics.RecordDatasetReload("failed")
			metrics.RecordErrorByComponent("service", "reload")
		}
		s.logger.Info(ctx, "reload discarded", logger.Uint64("generation", gen), logger.Error(err))
		return types.ReloadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordDatasetReload("committed")
	metrics.RecordRelationshipDropped(len(dropped))
	s.swapGraph(highlight.NewGraph(conns))

	res := types.ReloadResult{
		Generation:  snap.Generation,
		LoadedAt:    snap.Dataset.LoadedAt,
		Titles:      len(ds.Titles),
		Reviews:     len(ds.Reviews),
		BoxOffice:   len(ds.BoxOffice),
		Connections: len(conns),
	}
	for _, r := range dropped {
		res.Dropped = append(res.Dropped, fmt.Sprintf("%s: %s -> %s", r.Type, r.From, r.To))
	}
	var merr *multierror.Error
	if errors.As(loadErr, &merr) {
		for _, e := range merr.Errors {
			res.Errors = append(res.Errors, e.Error())
		}
	} else if loadErr != nil {
		res.Errors = append(res.Errors, loadErr.Error())
	}

	s.logger.Info(ctx, "dataset committed",
		logger.Uint64("generation", res.Generation),
		logger.Int("titles", res.Titles),
		logger.Int("connections", res.Connections),
		logger.Int("dropped", len(dropped)),
		logger.Int("failedFiles", len(res.Errors)),
	)
	return res, nil
}

// swapGraph installs the neighbour list of a new snapshot in every session.
func (s *Service) swapGraph(g highlight.Graph) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	s.graph = g
	for _, sess := range s.sessions {
		sess.machine.SetGraph(g)
	}
}

// Snapshot returns the committed dataset snapshot.
func (s *Service) Snapshot(ctx context.Context) (repository.Snapshot, error) {
	return s.store.Current(ctx)
}

// Engine returns the render engine; nil before Start.
func (s *Service) Engine() *render.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	q := s.queue
	s.mu.RUnlock()

	s.sessMu.RLock()
	sessions := len(s.sessions)
	s.sessMu.RUnlock()

	stats := map[string]interface{}{
		"started":     started,
		"source":      s.source.String(),
		"sessions":    sessions,
		"maxSessions": s.maxSessions,
		"queueSize":   s.queueSize,
	}
	if started && q != nil {
		stats["queueLength"] = q.Len()
	}

	snap, err := s.store.Current(context.Background())
	if err == nil {
		stats["generation"] = snap.Generation
		stats["loadedAt"] = snap.Dataset.LoadedAt
		stats["titles"] = len(snap.Dataset.Titles)
		stats["reviews"] = len(snap.Dataset.Reviews)
		stats["boxOffice"] = len(snap.Dataset.BoxOffice)
		stats["connections"] = len(snap.Dataset.Connections)
		stats["droppedRelationships"] = len(snap.Dropped)
	}
	return stats
}
