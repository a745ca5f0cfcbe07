// Package render turns a dataset snapshot into chart layouts and paints
// them as SVG. Layout functions are pure: the same request always yields the
// same document, and no state survives between calls.
package render

import (
	"math"
	"time"

	"github.com/okian/marquee/internal/domain/annotations"
	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/metrics"
)

// Chart names, used in routes and metrics.
const (
	ChartTimeline    = "timeline"
	ChartConnections = "connections"
	ChartDotPlot     = "dotplot"
	ChartRevenue     = "revenue"
	ChartRatings     = "ratings"
)

// LayoutCharts are the charts with a JSON layout document.
var LayoutCharts = []string{ChartTimeline, ChartConnections, ChartDotPlot}

// Charts lists every chart the engine can paint.
var Charts = []string{ChartTimeline, ChartConnections, ChartDotPlot, ChartRevenue, ChartRatings}

const (
	defaultFontSize = 11.0
	marginLeft      = 40.0
	marginRight     = 40.0
	marginTop       = 20.0
	marginBottom    = 28.0
	maxLabelRunes   = 28
)

// Request is everything one layout pass reads.
type Request struct {
	Dataset model.Dataset
	Width   float64
	Height  float64
	// Highlight is the hover set; empty when idle.
	Highlight model.HighlightSet
	// Pinned is the click selection: a title id, or a year for the dot plot.
	Pinned string
}

func (r Request) degenerate() bool {
	return !(r.Width > 0) || !(r.Height > 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0)
}

// Engine holds the geometry settings shared by every chart.
type Engine struct {
	laneGap       float64
	labelPadding  float64
	labelDamping  float64
	labelMaxIter  int
	fontSize      float64
	annotations   annotations.Table
	recordMetrics bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLaneGap sets the minimum horizontal gap between intervals in a lane.
func WithLaneGap(gap float64) Option {
	return func(e *Engine) {
		if gap >= 0 {
			e.laneGap = gap
		}
	}
}

// WithLabelPadding sets the padding the label placer keeps between boxes.
func WithLabelPadding(pad float64) Option {
	return func(e *Engine) {
		if pad >= 0 {
			e.labelPadding = pad
		}
	}
}

// WithLabelDamping sets the placer's push factor, in (0, 1).
func WithLabelDamping(d float64) Option {
	return func(e *Engine) {
		if d > 0 && d < 1 {
			e.labelDamping = d
		}
	}
}

// WithLabelMaxIterations caps the placer's retries per label.
func WithLabelMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.labelMaxIter = n
		}
	}
}

// WithFontSize sets the label font size in pixels.
func WithFontSize(size float64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.fontSize = size
		}
	}
}

// WithAnnotations sets the table of titles labelled when nothing is
// highlighted.
func WithAnnotations(t annotations.Table) Option {
	return func(e *Engine) { e.annotations = t }
}

// WithMetrics toggles layout metrics.
func WithMetrics(enabled bool) Option {
	return func(e *Engine) { e.recordMetrics = enabled }
}

// NewEngine returns an Engine with default geometry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		laneGap:       4,
		labelPadding:  4,
		labelDamping:  0.6,
		labelMaxIter:  60,
		fontSize:      defaultFontSize,
		recordMetrics: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FontSize returns the label font size.
func (e *Engine) FontSize() float64 { return e.fontSize }

// Important reports whether a title has an annotation.
func (e *Engine) Important(name string) bool {
	_, ok := e.annotations.Lookup(name)
	return ok
}

func (e *Engine) lanes() *geometry.LaneAllocator {
	return geometry.NewLaneAllocator(geometry.WithGap(e.laneGap))
}

func (e *Engine) placer(baseline, top, bottom float64) *geometry.Placer {
	return geometry.NewPlacer(
		geometry.WithBaseline(baseline),
		geometry.WithViewport(top, bottom),
		geometry.WithPadding(e.labelPadding),
		geometry.WithDamping(e.labelDamping),
		geometry.WithMaxIterations(e.labelMaxIter),
	)
}

// Events builds the timeline events for a dataset in release order.
func (e *Engine) Events(ds model.Dataset) []model.TimelineEvent {
	out := make([]model.TimelineEvent, 0, len(ds.Titles))
	for _, t := range ds.Titles {
		out = append(out, model.TimelineEvent{
			ID:        t.ID,
			Label:     t.Name,
			Position:  t.Released,
			Group:     t.Phase,
			Kind:      t.Kind,
			Important: e.Important(t.Name),
		})
	}
	return out
}

// timeScale spans whole years around the events so ticks land inside.
func timeScale(events []model.TimelineEvent, r0, r1 float64) geometry.TimeScale {
	first, last := events[0].Position, events[0].Position
	for _, ev := range events[1:] {
		if ev.Position.Before(first) {
			first = ev.Position
		}
		if ev.Position.After(last) {
			last = ev.Position
		}
	}
	start := time.Date(first.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return geometry.NewTimeScale(start, end, r0, r1)
}

func (e *Engine) observe(chart string, started time.Time) {
	if !e.recordMetrics {
		return
	}
	metrics.RecordLayoutDuration(chart, float64(time.Since(started).Microseconds())/1000)
}

func (e *Engine) nothing(chart string) error {
	if e.recordMetrics {
		metrics.RecordNothingToRender(chart)
	}
	return ErrNothingToRender
}
