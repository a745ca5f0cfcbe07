// Package geometry holds the layout primitives shared by every chart: a
// linear temporal scale, a first-fit lane allocator and a banded label
// placer. Everything here is pure and safe to call from any goroutine.
package geometry

import (
	"math"
	"time"
)

// Scale maps a numeric domain linearly onto a pixel range.
type Scale struct {
	d0, d1 float64
	r0, r1 float64
}

// NewScale builds a scale for the domain [d0, d1] and range [r0, r1].
// A reversed domain is reordered so Map stays non-decreasing for r0 <= r1.
func NewScale(d0, d1, r0, r1 float64) Scale {
	if d0 > d1 {
		d0, d1 = d1, d0
	}
	return Scale{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Degenerate reports whether the domain has no usable width.
func (s Scale) Degenerate() bool {
	w := s.d1 - s.d0
	return w == 0 || math.IsNaN(w) || math.IsInf(w, 0)
}

// Map returns the pixel for v. A degenerate domain maps everything to the
// middle of the range.
func (s Scale) Map(v float64) float64 {
	if s.Degenerate() {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// Domain returns the domain bounds.
func (s Scale) Domain() (float64, float64) { return s.d0, s.d1 }

// Range returns the pixel bounds.
func (s Scale) Range() (float64, float64) { return s.r0, s.r1 }

// TimeScale is a Scale over instants. Positions are measured in seconds from
// the start of the domain.
type TimeScale struct {
	start, end time.Time
	linear     Scale
}

// NewTimeScale builds a scale for [start, end] onto [r0, r1].
func NewTimeScale(start, end time.Time, r0, r1 float64) TimeScale {
	if end.Before(start) {
		start, end = end, start
	}
	return TimeScale{
		start:  start,
		end:    end,
		linear: NewScale(0, end.Sub(start).Seconds(), r0, r1),
	}
}

// Map returns the pixel for t.
func (s TimeScale) Map(t time.Time) float64 {
	return s.linear.Map(t.Sub(s.start).Seconds())
}

// Domain returns the instants at either end of the axis.
func (s TimeScale) Domain() (time.Time, time.Time) { return s.start, s.end }

// Range returns the pixel bounds.
func (s TimeScale) Range() (float64, float64) { return s.linear.Range() }

// Degenerate reports whether start and end coincide.
func (s TimeScale) Degenerate() bool { return s.linear.Degenerate() }

// Tick is an axis tick at a pixel position.
type Tick struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// YearTicks returns a tick on January 1st of every year inside the domain.
func (s TimeScale) YearTicks() []Tick {
	var ticks []Tick
	for y := s.start.Year(); y <= s.end.Year(); y++ {
		at := time.Date(y, time.January, 1, 0, 0, 0, 0, s.start.Location())
		if at.Before(s.start) || at.After(s.end) {
			continue
		}
		ticks = append(ticks, Tick{X: s.Map(at), Label: at.Format("2006")})
	}
	return ticks
}
