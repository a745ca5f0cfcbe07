package worker

import (
	"github.com/okian/marquee/pkg/logger"
)

// Option applies a configuration option to the EventLoop.
type Option func(*EventLoop)

// WithName sets the loop name for identification and logging.
func WithName(name string) Option {
	return func(w *EventLoop) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the loop.
func WithLogger(logger logger.Logger) Option {
	return func(w *EventLoop) {
		if logger != nil {
			w.logger = logger
		}
	}
}
