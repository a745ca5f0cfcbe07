package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
)

const stylesheet = `
.bg { fill: #ffffff; }
.axis { stroke: #333333; stroke-width: 1.5; }
.tick { stroke: #333333; stroke-width: 1; }
.tick-label { font-family: sans-serif; font-size: 10px; fill: #555555; text-anchor: middle; }
.band { opacity: 0.75; }
.phase-1 { fill: #4e79a7; } .phase-2 { fill: #f28e2b; } .phase-3 { fill: #e15759; }
.phase-4 { fill: #76b7b2; } .phase-5 { fill: #59a14f; } .phase-6 { fill: #edc948; }
.marker { fill: #888888; stroke: #ffffff; stroke-width: 1; cursor: pointer; }
.marker.show { fill: #b07aa1; }
.marker.important { fill: #333333; }
.highlighted { fill: #d62728; stroke: #d62728; }
.pinned { stroke: #000000; stroke-width: 2; }
.dimmed { opacity: 0.25; }
.arc { fill: none; stroke: #9c9c9c; stroke-width: 1.2; }
.arc.highlighted { fill: none; stroke: #d62728; stroke-width: 2.5; }
.arc.sequel { stroke-dasharray: none; } .arc.spinoff { stroke-dasharray: 4 2; }
.arc.crossover { stroke-dasharray: 1 2; } .arc.team_up { stroke-dasharray: 6 2 1 2; }
.arc.post_credits { stroke-dasharray: 2 4; }
.leader { stroke: #bbbbbb; stroke-width: 0.75; }
.label-box { fill: #ffffff; stroke: #cccccc; stroke-width: 0.75; }
.label { font-family: sans-serif; fill: #222222; text-anchor: middle; }
`

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func px(v float64) int { return int(math.Round(v)) }

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func begin(w io.Writer, width, height float64, title string) *svg.SVG {
	c := svg.New(w)
	c.Start(px(width), px(height))
	c.Title(title)
	c.Def()
	c.Style("text/css", stylesheet)
	c.DefEnd()
	c.Rect(0, 0, px(width), px(height), `class="bg"`)
	return c
}

func markerClass(m Marker, focused bool) string {
	cls := "marker"
	if m.Kind == model.KindShow {
		cls += " show"
	}
	if m.Important {
		cls += " important"
	}
	if m.Highlighted {
		cls += " highlighted"
	} else if focused {
		cls += " dimmed"
	}
	if m.Pinned {
		cls += " pinned"
	}
	return cls
}

func paintAxis(c *svg.SVG, width, height, baseline float64, ticks []geometry.Tick) {
	c.Gid("axis")
	c.Line(px(marginLeft), px(baseline), px(width-marginRight), px(baseline), `class="axis"`)
	for _, t := range ticks {
		c.Line(px(t.X), px(baseline-4), px(t.X), px(baseline+4), `class="tick"`)
		c.Text(px(t.X), px(height-8), t.Label, `class="tick-label"`)
	}
	c.Gend()
}

func paintMarkers(c *svg.SVG, markers []Marker, focused bool) {
	c.Gid("markers")
	for _, m := range markers {
		r := 4
		if m.Highlighted || m.Pinned {
			r = 6
		}
		c.Circle(px(m.X), px(m.Y), r, attr("class", markerClass(m, focused)), attr("data-id", m.ID))
	}
	c.Gend()
}

func paintLabels(c *svg.SVG, labels []Label, baseline, fontSize float64) {
	c.Gid("labels")
	for _, l := range labels {
		edge := l.Bottom()
		if l.Band == model.BandBelow {
			edge = l.Top
		}
		c.Line(px(l.AnchorX), px(baseline), px(l.AnchorX), px(edge), `class="leader"`)
		c.Rect(px(l.Left()), px(l.Top), px(l.Width), px(l.Height), `class="label-box"`)
		c.Text(px(l.AnchorX), px(l.Top+l.Height-4), l.Text,
			`class="label"`, fmt.Sprintf(`font-size="%gpx"`, fontSize), attr("data-id", l.OwnerID))
	}
	c.Gend()
}

// PaintTimeline writes a timeline layout as SVG.
func (e *Engine) PaintTimeline(w io.Writer, l TimelineLayout) error {
	ew := &errWriter{w: w}
	c := begin(ew, l.Width, l.Height, "Release timeline")

	c.Gid("bands")
	for _, b := range l.Bands {
		c.Rect(px(b.Start), px(b.Y), max(px(b.End-b.Start), 2), px(b.Height),
			attr("class", fmt.Sprintf("band phase-%d", b.Phase)))
	}
	c.Gend()

	paintAxis(c, l.Width, l.Height, l.Baseline, l.Ticks)
	paintMarkers(c, l.Markers, l.Focus != "")
	paintLabels(c, l.Labels, l.Baseline, e.fontSize)
	c.End()
	return ew.err
}

// PaintConnections writes a connections layout as SVG.
func (e *Engine) PaintConnections(w io.Writer, l ConnectionsLayout) error {
	ew := &errWriter{w: w}
	c := begin(ew, l.Width, l.Height, "Connections")

	c.Gid("arcs")
	for _, a := range l.Arcs {
		// A quadratic curve peaks at half its control point's offset.
		ctrl := l.Baseline - 2*a.Height
		if a.Side == model.SideBottom {
			ctrl = l.Baseline + 2*a.Height
		}
		cls := "arc " + string(a.Type)
		if a.Highlighted {
			cls += " highlighted"
		}
		c.Qbez(px(a.X1), px(l.Baseline), px((a.X1+a.X2)/2), px(ctrl), px(a.X2), px(l.Baseline),
			attr("class", cls), attr("data-id", a.ID))
	}
	c.Gend()

	paintAxis(c, l.Width, l.Height, l.Baseline, l.Ticks)
	paintMarkers(c, l.Markers, l.Focus != "")
	paintLabels(c, l.Labels, l.Baseline, e.fontSize)
	c.End()
	return ew.err
}

// PaintDotPlot writes a dot plot layout as SVG.
func (e *Engine) PaintDotPlot(w io.Writer, l DotPlotLayout) error {
	ew := &errWriter{w: w}
	c := begin(ew, l.Width, l.Height, "Releases per year")

	paintAxis(c, l.Width, l.Height, l.Baseline, l.Ticks)

	focused := l.Focus != ""
	c.Gid("dots")
	for _, d := range l.Dots {
		m := Marker{Kind: d.Kind, Highlighted: d.Highlighted, Pinned: d.Pinned}
		c.Circle(px(d.X), px(d.Y), max(px(d.R), 1),
			attr("class", markerClass(m, focused || (l.PinnedYear != 0 && !d.Pinned))),
			attr("data-id", d.ID), attr("data-year", fmt.Sprint(d.Year)))
	}
	c.Gend()

	paintLabels(c, l.Labels, l.Baseline, e.fontSize)
	c.End()
	return ew.err
}
