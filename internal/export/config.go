// Package export renders every chart of a dataset to files, without a
// server. It backs the render command.
package export

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/marquee/internal/adapters/dataset"
	"github.com/okian/marquee/internal/adapters/render"
)

// Defaults for the render command.
const (
	DefaultOutDir = "out"
	DefaultWidth  = 1200
	DefaultHeight = 600
)

// ErrInvalidConfig reports an unusable export configuration.
var ErrInvalidConfig = errors.New("invalid export config")

// Config holds the export settings.
type Config struct {
	DataSource      string
	AnnotationsFile string
	OutDir          string
	Width           float64
	Height          float64
	// Hover focuses one entity in every chart.
	Hover string
	// Pinned pins a title id or a year.
	Pinned string
	// Charts limits the export; empty means every chart.
	Charts []string
	// Layouts also writes the JSON layout documents.
	Layouts bool
	LogFile string
}

// DefaultConfig returns the configuration used when no flag is given.
func DefaultConfig() Config {
	return Config{
		DataSource: dataset.SampleLocation,
		OutDir:     DefaultOutDir,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
	}
}

// ParseCharts splits a comma separated chart list.
func ParseCharts(list string) []string {
	var out []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutDir) == "" {
		return fmt.Errorf("%w: out dir must not be empty", ErrInvalidConfig)
	}
	for _, chart := range c.Charts {
		if !slices.Contains(render.Charts, chart) {
			return fmt.Errorf("%w: unknown chart %q (want one of %s)", ErrInvalidConfig, chart, strings.Join(render.Charts, ", "))
		}
	}
	return nil
}

func (c Config) charts() []string {
	if len(c.Charts) == 0 {
		return render.Charts
	}
	return c.Charts
}
