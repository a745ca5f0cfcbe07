package render

import (
	"time"

	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/metrics"
)

// Arc is one relationship drawn between two releases.
type Arc struct {
	ID          string             `json:"id"`
	Type        model.RelationType `json:"type"`
	FromID      string             `json:"from_id"`
	ToID        string             `json:"to_id"`
	Side        model.Side         `json:"side"`
	X1          float64            `json:"x1"`
	X2          float64            `json:"x2"`
	Lane        int                `json:"lane"`
	Height      float64            `json:"height"`
	Highlighted bool               `json:"highlighted"`
}

// ConnectionsLayout positions the relationship arcs.
type ConnectionsLayout struct {
	Chart    string             `json:"chart"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Baseline float64            `json:"baseline"`
	Ticks    []geometry.Tick    `json:"ticks"`
	Markers  []Marker           `json:"markers"`
	Arcs     []Arc              `json:"arcs"`
	Lanes    map[model.Side]int `json:"lanes"`
	Labels   []Label            `json:"labels"`
	Focus    string             `json:"focus,omitempty"`
	Pinned   string             `json:"pinned,omitempty"`
	LabelStats
}

// ConnectionID names an arc.
func ConnectionID(c model.Connection) string {
	return string(c.Type) + ":" + c.FromID + ":" + c.ToID
}

// LayoutConnections draws every resolved connection as an arc over the
// shared time axis. Arcs are intervals on their side; each lane lifts the
// arc further from the axis so nested arcs never share a height.
func (e *Engine) LayoutConnections(req Request) (ConnectionsLayout, error) {
	started := time.Now()
	defer e.observe(ChartConnections, started)

	if req.degenerate() || req.Dataset.Empty() {
		return ConnectionsLayout{}, e.nothing(ChartConnections)
	}

	events := e.Events(req.Dataset)
	ts := timeScale(events, marginLeft, req.Width-marginRight)
	baseline := marginTop + (req.Height-marginTop-marginBottom)/2

	out := ConnectionsLayout{
		Chart:    ChartConnections,
		Width:    req.Width,
		Height:   req.Height,
		Baseline: baseline,
		Ticks:    ts.YearTicks(),
		Focus:    req.Highlight.AnchorID,
		Pinned:   req.Pinned,
	}

	xs := make(map[string]float64, len(events))
	want := labelled(events, req)
	var targets []labelTarget
	for _, ev := range events {
		x := ts.Map(ev.Position)
		xs[ev.ID] = x
		out.Markers = append(out.Markers, Marker{
			ID:          ev.ID,
			Label:       ev.Label,
			X:           x,
			Y:           baseline,
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

	var (
		conns     []model.Connection
		intervals []model.Interval
	)
	for _, c := range req.Dataset.Connections {
		x1, ok1 := xs[c.FromID]
		x2, ok2 := xs[c.ToID]
		if !ok1 || !ok2 {
			continue
		}
		conns = append(conns, c)
		intervals = append(intervals, model.Interval{ID: ConnectionID(c), Start: x1, End: x2, Side: c.Side})
	}

	assignments := e.lanes().Allocate(intervals)
	out.Lanes = geometry.LaneCount(assignments)
	if e.recordMetrics {
		metrics.UpdateLanesUsed(ChartConnections, string(model.SideTop), out.Lanes[model.SideTop])
		metrics.UpdateLanesUsed(ChartConnections, string(model.SideBottom), out.Lanes[model.SideBottom])
	}

	room := map[model.Side]float64{
		model.SideTop:    baseline - marginTop,
		model.SideBottom: req.Height - marginBottom - baseline,
	}
	for i, as := range assignments {
		iv := intervals[i].Normalized()
		c := conns[i]
		step := room[as.Side] / float64(out.Lanes[as.Side]+1)
		out.Arcs = append(out.Arcs, Arc{
			ID:          iv.ID,
			Type:        c.Type,
			FromID:      c.FromID,
			ToID:        c.ToID,
			Side:        as.Side,
			X1:          iv.Start,
			X2:          iv.End,
			Lane:        as.Lane,
			Height:      step * float64(as.Lane+1),
			Highlighted: arcHighlighted(c, req),
		})
	}

	out.Labels, out.LabelStats = e.placeLabels(targets, baseline, marginTop, req.Height-marginBottom, labelOffset)
	return out, nil
}

func arcHighlighted(c model.Connection, req Request) bool {
	if !req.Highlight.Empty() && c.Touches(req.Highlight.AnchorID) {
		return true
	}
	return req.Pinned != "" && c.Touches(req.Pinned)
}
