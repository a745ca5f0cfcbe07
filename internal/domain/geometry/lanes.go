package geometry

import (
	"sort"

	"github.com/okian/marquee/internal/domain/model"
)

const defaultLaneGap = 4

// LaneAllocator assigns intervals to rows so that intervals sharing a side
// and a row never overlap. It is a first-fit interval coloring: not always
// the minimum number of rows, but deterministic and linear in the row count.
type LaneAllocator struct {
	gap float64
}

// LaneOption configures a LaneAllocator.
type LaneOption func(*LaneAllocator)

// WithGap sets the minimum pixel distance between neighbours in one lane.
func WithGap(gap float64) LaneOption {
	return func(a *LaneAllocator) {
		if gap >= 0 {
			a.gap = gap
		}
	}
}

// NewLaneAllocator creates an allocator with the given options.
func NewLaneAllocator(opts ...LaneOption) *LaneAllocator {
	a := &LaneAllocator{gap: defaultLaneGap}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Gap returns the configured minimum gap.
func (a *LaneAllocator) Gap() float64 { return a.gap }

// Allocate returns one assignment per interval, in input order.
//
// Intervals are visited by ascending start, then descending span, then input
// position. Each goes to the lowest lane on its side whose right edge is at
// most start-gap; otherwise a new lane is opened.
func (a *LaneAllocator) Allocate(intervals []model.Interval) []model.LaneAssignment {
	out := make([]model.LaneAssignment, len(intervals))
	if len(intervals) == 0 {
		return out
	}

	norm := make([]model.Interval, len(intervals))
	order := make([]int, len(intervals))
	for i, iv := range intervals {
		norm[i] = iv.Normalized()
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := norm[order[i]], norm[order[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Span() != b.Span() {
			return a.Span() > b.Span()
		}
		return order[i] < order[j]
	})

	edges := map[model.Side][]float64{}
	for _, idx := range order {
		iv := norm[idx]
		lanes := edges[iv.Side]
		lane := -1
		for l, right := range lanes {
			if right <= iv.Start-a.gap {
				lane = l
				break
			}
		}
		if lane < 0 {
			lanes = append(lanes, iv.Start)
			lane = len(lanes) - 1
		}
		lanes[lane] = iv.End
		edges[iv.Side] = lanes

		out[idx] = model.LaneAssignment{ItemID: iv.ID, Side: iv.Side, Lane: lane}
	}
	return out
}

// LaneCount returns the number of lanes used on each side.
func LaneCount(assignments []model.LaneAssignment) map[model.Side]int {
	counts := map[model.Side]int{}
	for _, as := range assignments {
		if as.Lane+1 > counts[as.Side] {
			counts[as.Side] = as.Lane + 1
		}
	}
	return counts
}

// PointIntervals turns anchor points into intervals of the given width
// centred on each anchor, all on one side.
func PointIntervals(ids []string, xs []float64, width float64, side model.Side) []model.Interval {
	n := len(ids)
	if len(xs) < n {
		n = len(xs)
	}
	out := make([]model.Interval, n)
	for i := 0; i < n; i++ {
		out[i] = model.Interval{ID: ids[i], Start: xs[i] - width/2, End: xs[i] + width/2, Side: side}
	}
	return out
}
