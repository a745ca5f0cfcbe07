package service

import (
	"time"

	"github.com/okian/marquee/internal/adapters/dataset"
	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/adapters/repository"
	"github.com/okian/marquee/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataSource sets where datasets are read from: a directory, an
// http(s) base URL, or "embedded".
func WithDataSource(location string) Option {
	return func(s *Service) {
		if location != "" {
			s.dataSource = location
		}
	}
}

// WithSource sets the dataset source directly, overriding WithDataSource.
func WithSource(src dataset.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithAnnotationsFile replaces the embedded annotation table.
func WithAnnotationsFile(path string) Option {
	return func(s *Service) { s.annotationsFile = path }
}

// WithQueueSize sets the capacity of the UI event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions caps the number of open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithResizeDebounce sets the quiet period a resize burst must observe
// before its last viewport is committed. Zero commits every resize.
func WithResizeDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.resizeDebounce = d
		}
	}
}

// WithViewport sets the viewport used when neither the request nor the
// session names one.
func WithViewport(width, height float64) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.width, s.height = width, height
		}
	}
}

// WithEngineOptions passes geometry settings to the render engine.
func WithEngineOptions(opts ...render.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
