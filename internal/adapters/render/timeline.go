package render

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/metrics"
)

const (
	bandHeight  = 8.0
	bandGap     = 3.0
	labelOffset = 10.0
)

// Marker is one release on an axis.
type Marker struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Phase       model.Phase `json:"phase"`
	Kind        model.Kind  `json:"kind"`
	Important   bool        `json:"important"`
	Highlighted bool        `json:"highlighted"`
	Pinned      bool        `json:"pinned"`
}

// PhaseBand is the span of one phase, drawn as a bar under the axis.
type PhaseBand struct {
	Phase  model.Phase `json:"phase"`
	Start  float64     `json:"start"`
	End    float64     `json:"end"`
	Lane   int         `json:"lane"`
	Y      float64     `json:"y"`
	Height float64     `json:"height"`
}

// TimelineLayout positions every element of the release timeline.
type TimelineLayout struct {
	Chart    string          `json:"chart"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	Baseline float64         `json:"baseline"`
	Ticks    []geometry.Tick `json:"ticks"`
	Bands    []PhaseBand     `json:"bands"`
	Markers  []Marker        `json:"markers"`
	Labels   []Label         `json:"labels"`
	Focus    string          `json:"focus,omitempty"`
	Pinned   string          `json:"pinned,omitempty"`
	LabelStats
}

// LayoutTimeline lays out the release timeline: axis, year ticks, phase
// bands allocated to lanes under the axis, one marker per release and
// collision-resolved labels.
func (e *Engine) LayoutTimeline(req Request) (TimelineLayout, error) {
	started := time.Now()
	defer e.observe(ChartTimeline, started)

	if req.degenerate() || req.Dataset.Empty() {
		return TimelineLayout{}, e.nothing(ChartTimeline)
	}

	events := e.Events(req.Dataset)
	ts := timeScale(events, marginLeft, req.Width-marginRight)

	out := TimelineLayout{
		Chart:  ChartTimeline,
		Width:  req.Width,
		Height: req.Height,
		Ticks:  ts.YearTicks(),
		Focus:  req.Highlight.AnchorID,
		Pinned: req.Pinned,
	}

	// Phase bands sit at the bottom, above the year labels.
	spans, phases := phaseSpans(events, ts)
	assignments := e.lanes().Allocate(spans)
	laneCount := geometry.LaneCount(assignments)[model.SideBottom]
	bandsTop := req.Height - marginBottom - float64(laneCount)*(bandHeight+bandGap)
	if bandsTop < marginTop {
		bandsTop = marginTop
	}
	for i, as := range assignments {
		out.Bands = append(out.Bands, PhaseBand{
			Phase:  phases[i],
			Start:  spans[i].Start,
			End:    spans[i].End,
			Lane:   as.Lane,
			Y:      bandsTop + float64(as.Lane)*(bandHeight+bandGap),
			Height: bandHeight,
		})
	}
	if e.recordMetrics {
		metrics.UpdateLanesUsed(ChartTimeline, string(model.SideBottom), laneCount)
	}

	out.Baseline = marginTop + (bandsTop-marginTop)/2

	want := labelled(events, req)
	var targets []labelTarget
	for _, ev := range events {
		x := ts.Map(ev.Position)
		out.Markers = append(out.Markers, Marker{
			ID:          ev.ID,
			Label:       ev.Label,
			X:           x,
			Y:           out.Baseline,
			Phase:       ev.Group,
			Kind:        ev.Kind,
			Important:   ev.Important,
			Highlighted: req.Highlight.Contains(ev.ID),
			Pinned:      ev.ID == req.Pinned,
		})
		if want[ev.ID] {
			targets = append(targets, labelTarget{id: ev.ID, text: ev.Label, x: x})
		}
	}

	out.Labels, out.LabelStats = e.placeLabels(targets, out.Baseline, marginTop, bandsTop-bandGap, labelOffset)
	return out, nil
}

// phaseSpans returns one interval per phase covering its releases, ordered
// by phase, and the phase of each interval.
func phaseSpans(events []model.TimelineEvent, ts geometry.TimeScale) ([]model.Interval, []model.Phase) {
	byPhase := map[model.Phase]*model.Interval{}
	for _, ev := range events {
		x := ts.Map(ev.Position)
		iv, ok := byPhase[ev.Group]
		if !ok {
			byPhase[ev.Group] = &model.Interval{ID: "phase-" + strconv.Itoa(int(ev.Group)), Start: x, End: x, Side: model.SideBottom}
			continue
		}
		iv.Start = math.Min(iv.Start, x)
		iv.End = math.Max(iv.End, x)
	}
	phases := make([]model.Phase, 0, len(byPhase))
	for p := range byPhase {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i] < phases[j] })

	out := make([]model.Interval, len(phases))
	for i, p := range phases {
		out[i] = *byPhase[p]
	}
	return out, phases
}
