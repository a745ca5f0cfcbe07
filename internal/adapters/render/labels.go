package render

import (
	"sort"

	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/metrics"
)

// Label is a placed label and the text it carries.
type Label struct {
	model.LabelBox
	Text string `json:"text"`
	Note string `json:"note,omitempty"`
}

// LabelStats reports how hard the placer had to work.
type LabelStats struct {
	Iterations int `json:"iterations"`
	Unresolved int `json:"unresolved"`
}

type labelTarget struct {
	id   string
	text string
	x    float64
}

// labelled picks the events that get a label: the hover set when focused,
// important events otherwise, and the pinned event in both cases.
func labelled(events []model.TimelineEvent, req Request) map[string]bool {
	out := map[string]bool{}
	focused := !req.Highlight.Empty()
	for _, ev := range events {
		switch {
		case focused && req.Highlight.Contains(ev.ID):
			out[ev.ID] = true
		case !focused && ev.Important:
			out[ev.ID] = true
		case ev.ID == req.Pinned:
			out[ev.ID] = true
		}
	}
	return out
}

// placeLabels seeds one box per target, alternating sides in anchor order,
// and hands them to the placer.
func (e *Engine) placeLabels(targets []labelTarget, baseline, top, bottom, offset float64) ([]Label, LabelStats) {
	if len(targets) == 0 {
		return nil, LabelStats{}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].x < targets[j].x })

	height := e.fontSize + 6
	seeds := make([]geometry.Seed, len(targets))
	texts := make([]string, len(targets))
	for i, t := range targets {
		texts[i] = geometry.Truncate(t.text, maxLabelRunes)
		seeds[i] = geometry.Seed{
			OwnerID: t.id,
			AnchorX: t.x,
			Width:   geometry.EstimateTextWidth(texts[i], e.fontSize) + 8,
			Height:  height,
		}
	}

	placement := e.placer(baseline, top, bottom).Place(geometry.SeedLabels(seeds, baseline, offset))
	if e.recordMetrics {
		metrics.RecordPlacerIterations(placement.Iterations)
		metrics.RecordLabelsUnresolved(placement.Unresolved)
	}

	labels := make([]Label, len(placement.Boxes))
	for i, b := range placement.Boxes {
		labels[i] = Label{LabelBox: b, Text: texts[i]}
		if a, ok := e.annotations.Lookup(targets[i].text); ok {
			labels[i].Note = a.Note
		}
	}
	return labels, LabelStats{Iterations: placement.Iterations, Unresolved: placement.Unresolved}
}
