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

const maxDotDiameter = 16.0

// Dot is one release in the per-year dot plot.
type Dot struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Year        int        `json:"year"`
	Kind        model.Kind `json:"kind"`
	Side        model.Side `json:"side"`
	Lane        int        `json:"lane"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	R           float64    `json:"r"`
	Highlighted bool       `json:"highlighted"`
	Pinned      bool       `json:"pinned"`
}

// DotPlotLayout stacks releases per year: movies above the axis, shows
// below.
type DotPlotLayout struct {
	Chart      string             `json:"chart"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Baseline   float64            `json:"baseline"`
	Ticks      []geometry.Tick    `json:"ticks"`
	Dots       []Dot              `json:"dots"`
	Lanes      map[model.Side]int `json:"lanes"`
	Labels     []Label            `json:"labels"`
	PinnedYear int                `json:"pinned_year,omitempty"`
	Focus      string             `json:"focus,omitempty"`
	LabelStats
}

// PinnedYear parses a pinned selection as a year. Zero means none.
func PinnedYear(pinned string) int {
	y, err := strconv.Atoi(pinned)
	if err != nil || y < 1000 || y > 9999 {
		return 0
	}
	return y
}

func sideFor(k model.Kind) model.Side {
	if k == model.KindShow {
		return model.SideBottom
	}
	return model.SideTop
}

// LayoutDotPlot places one dot per release in its year column and stacks
// same-year releases with the lane allocator.
func (e *Engine) LayoutDotPlot(req Request) (DotPlotLayout, error) {
	started := time.Now()
	defer e.observe(ChartDotPlot, started)

	if req.degenerate() || req.Dataset.Empty() {
		return DotPlotLayout{}, e.nothing(ChartDotPlot)
	}

	events := e.Events(req.Dataset)
	minYear, maxYear := events[0].Position.Year(), events[0].Position.Year()
	perColumn := map[model.Side]map[int]int{model.SideTop: {}, model.SideBottom: {}}
	for _, ev := range events {
		y := ev.Position.Year()
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
		perColumn[sideFor(ev.Kind)][y]++
	}
	tallest := 1
	for _, cols := range perColumn {
		for _, n := range cols {
			if n > tallest {
				tallest = n
			}
		}
	}

	scale := geometry.NewScale(float64(minYear)-0.5, float64(maxYear)+0.5, marginLeft, req.Width-marginRight)
	years := maxYear - minYear + 1
	column := (req.Width - marginLeft - marginRight) / float64(years)
	baseline := marginTop + (req.Height-marginTop-marginBottom)/2
	half := baseline - marginTop

	diameter := math.Min(maxDotDiameter, math.Min(column-e.laneGap, half/float64(tallest)))
	if diameter <= 0 {
		return DotPlotLayout{}, e.nothing(ChartDotPlot)
	}

	out := DotPlotLayout{
		Chart:      ChartDotPlot,
		Width:      req.Width,
		Height:     req.Height,
		Baseline:   baseline,
		PinnedYear: PinnedYear(req.Pinned),
		Focus:      req.Highlight.AnchorID,
	}
	for y := minYear; y <= maxYear; y++ {
		out.Ticks = append(out.Ticks, geometry.Tick{X: scale.Map(float64(y)), Label: strconv.Itoa(y)})
	}

	// Lane allocation per side keeps same-year releases in release order.
	var intervals []model.Interval
	for _, side := range []model.Side{model.SideTop, model.SideBottom} {
		var ids []string
		var xs []float64
		for _, ev := range events {
			if sideFor(ev.Kind) != side {
				continue
			}
			ids = append(ids, ev.ID)
			xs = append(xs, scale.Map(float64(ev.Position.Year())))
		}
		intervals = append(intervals, geometry.PointIntervals(ids, xs, diameter, side)...)
	}
	assignments := e.lanes().Allocate(intervals)
	out.Lanes = geometry.LaneCount(assignments)
	if e.recordMetrics {
		metrics.UpdateLanesUsed(ChartDotPlot, string(model.SideTop), out.Lanes[model.SideTop])
		metrics.UpdateLanesUsed(ChartDotPlot, string(model.SideBottom), out.Lanes[model.SideBottom])
	}

	byID := make(map[string]model.TimelineEvent, len(events))
	for _, ev := range events {
		byID[ev.ID] = ev
	}
	var targets []labelTarget
	for i, as := range assignments {
		ev := byID[as.ItemID]
		x := (intervals[i].Start + intervals[i].End) / 2
		offset := (float64(as.Lane) + 0.5) * diameter
		y := baseline - offset
		if as.Side == model.SideBottom {
			y = baseline + offset
		}
		d := Dot{
			ID:          ev.ID,
			Label:       ev.Label,
			Year:        ev.Position.Year(),
			Kind:        ev.Kind,
			Side:        as.Side,
			Lane:        as.Lane,
			X:           x,
			Y:           y,
			R:           diameter * 0.42,
			Highlighted: req.Highlight.Contains(ev.ID),
			Pinned:      out.PinnedYear != 0 && ev.Position.Year() == out.PinnedYear,
		}
		out.Dots = append(out.Dots, d)
		if d.Highlighted {
			targets = append(targets, labelTarget{id: ev.ID, text: ev.Label, x: x})
		}
	}
	sort.SliceStable(out.Dots, func(i, j int) bool {
		if out.Dots[i].X != out.Dots[j].X {
			return out.Dots[i].X < out.Dots[j].X
		}
		return out.Dots[i].Y < out.Dots[j].Y
	})

	stack := float64(max(out.Lanes[model.SideTop], out.Lanes[model.SideBottom])) * diameter
	out.Labels, out.LabelStats = e.placeLabels(targets, baseline, marginTop, req.Height-marginBottom, stack+4)
	return out, nil
}
