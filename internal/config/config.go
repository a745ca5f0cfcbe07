// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataSource is a directory, an http(s) base URL, or "embedded".
	DataSource string `koanf:"data_source"`

	// AnnotationsFile replaces the embedded annotation table when set.
	AnnotationsFile string `koanf:"annotations_file"`

	// ViewportWidth and ViewportHeight are the default chart size in pixels.
	ViewportWidth  int `koanf:"viewport_width"`
	ViewportHeight int `koanf:"viewport_height"`

	// Layout tuning.
	LaneGap            float64 `koanf:"lane_gap"`
	LabelPadding       float64 `koanf:"label_padding"`
	LabelDamping       float64 `koanf:"label_damping"`
	LabelMaxIterations int     `koanf:"label_max_iterations"`
	FontSize           float64 `koanf:"font_size"`

	// ResizeDebounceMS is the quiet period before a resize burst commits.
	ResizeDebounceMS int `koanf:"resize_debounce_ms"`

	// EventQueueSize bounds the in-memory UI event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// MaxSessions caps concurrently open sessions.
	MaxSessions int `koanf:"max_sessions"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DataSource:         "embedded",
		ViewportWidth:      1200,
		ViewportHeight:     600,
		LaneGap:            4,
		LabelPadding:       4,
		LabelDamping:       0.6,
		LabelMaxIterations: 60,
		FontSize:           11,
		ResizeDebounceMS:   120,
		EventQueueSize:     1024,
		MaxSessions:        256,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	const op = "config.validate"

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%s: %w: addr must not be empty", op, ErrInvalidConfig)
	case strings.TrimSpace(c.DataSource) == "":
		return fmt.Errorf("%s: %w: data_source must not be empty", op, ErrInvalidConfig)
	case c.ViewportWidth <= 0 || c.ViewportHeight <= 0:
		return fmt.Errorf("%s: %w: viewport must be positive, got %dx%d", op, ErrInvalidConfig, c.ViewportWidth, c.ViewportHeight)
	case c.LaneGap < 0 || c.LabelPadding < 0:
		return fmt.Errorf("%s: %w: lane_gap and label_padding must not be negative", op, ErrInvalidConfig)
	case c.LabelDamping <= 0 || c.LabelDamping >= 1:
		return fmt.Errorf("%s: %w: label_damping must be in (0, 1), got %g", op, ErrInvalidConfig, c.LabelDamping)
	case c.LabelMaxIterations <= 0:
		return fmt.Errorf("%s: %w: label_max_iterations must be positive", op, ErrInvalidConfig)
	case c.FontSize <= 0:
		return fmt.Errorf("%s: %w: font_size must be positive", op, ErrInvalidConfig)
	case c.ResizeDebounceMS < 0:
		return fmt.Errorf("%s: %w: resize_debounce_ms must not be negative", op, ErrInvalidConfig)
	case c.EventQueueSize <= 0:
		return fmt.Errorf("%s: %w: event_queue_size must be positive", op, ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%s: %w: max_sessions must be positive", op, ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%s: %w: log_format must be text or json, got %q", op, ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
