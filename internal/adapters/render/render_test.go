package render_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/marquee/internal/adapters/dataset"
	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/domain/annotations"
	"github.com/okian/marquee/internal/domain/geometry"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/relations"
)

func date(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func smallDataset() model.Dataset {
	return model.Dataset{
		Titles: []model.Title{
			{ID: "a", Name: "Iron Man", Phase: 1, Released: date(2008, 5, 2), Kind: model.KindMovie},
			{ID: "b", Name: "Iron Man 2", Phase: 1, Released: date(2010, 5, 7), Kind: model.KindMovie},
			{ID: "c", Name: "The Avengers", Phase: 1, Released: date(2012, 5, 4), Kind: model.KindMovie},
			{ID: "d", Name: "Iron Man 3", Phase: 2, Released: date(2013, 5, 3), Kind: model.KindMovie},
			{ID: "e", Name: "Loki", Phase: 4, Released: date(2021, 6, 9), Kind: model.KindShow},
		},
		Connections: []model.Connection{
			{Type: model.RelationSequel, FromID: "a", ToID: "b", Side: model.SideTop},
			{Type: model.RelationSequel, FromID: "b", ToID: "d", Side: model.SideTop},
			{Type: model.RelationTeamUp, FromID: "a", ToID: "c", Side: model.SideTop},
		},
		Reviews: []model.Review{
			{Title: "Iron Man", Author: "x", Date: date(2008, 5, 10), Rating: 9, Likes: 10},
			{Title: "Iron Man", Author: "y", Date: date(2008, 6, 10), Rating: 7, Likes: 10},
			{Title: "Loki", Author: "z", Date: date(2021, 6, 20), Rating: 8, Likes: 50},
			{Title: "Unknown", Author: "w", Date: date(2012, 1, 1), Rating: 3, Likes: 1},
		},
		BoxOffice: []model.BoxOffice{
			{ID: "a", Title: "Iron Man", Released: date(2008, 5, 2), IsMarvel: true, Budget: 140e6, Revenue: 585e6},
			{ID: "c", Title: "The Avengers", Released: date(2012, 5, 4), IsMarvel: true, Budget: 220e6, Revenue: 1518e6},
		},
	}
}

func sampleDataset(t *testing.T) model.Dataset {
	t.Helper()
	ds, err := dataset.NewLoader(dataset.NewSource(dataset.SampleLocation)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	rels, err := relations.Embedded()
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	ds.Connections, _ = relations.Resolve(rels, ds.Titles)
	return ds
}

func wellFormed(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func TestEmptyCatalog(t *testing.T) {
	Convey("Given an empty catalog", t, func() {
		e := render.NewEngine(render.WithMetrics(false))
		req := render.Request{Dataset: model.Dataset{}, Width: 800, Height: 400}

		Convey("Then every chart reports nothing to render and writes nothing", func() {
			for _, chart := range render.Charts {
				var buf bytes.Buffer
				var err error
				So(func() { err = e.Render(chart, req, &buf) }, ShouldNotPanic)
				So(errors.Is(err, render.ErrNothingToRender), ShouldBeTrue)
				So(buf.Len(), ShouldEqual, 0)
			}
		})
	})

	Convey("Given a non-positive viewport", t, func() {
		e := render.NewEngine(render.WithMetrics(false))
		for _, req := range []render.Request{
			{Dataset: smallDataset(), Width: 0, Height: 400},
			{Dataset: smallDataset(), Width: 800, Height: -1},
		} {
			for _, chart := range render.LayoutCharts {
				_, err := e.Layout(chart, req)
				So(errors.Is(err, render.ErrNothingToRender), ShouldBeTrue)
			}
		}
	})

	Convey("Given an unknown chart", t, func() {
		e := render.NewEngine(render.WithMetrics(false))
		err := e.Render("pie", render.Request{Dataset: smallDataset(), Width: 10, Height: 10}, io.Discard)
		So(errors.Is(err, render.ErrUnknownChart), ShouldBeTrue)
	})
}

func TestLayoutTimeline(t *testing.T) {
	Convey("Given a small catalog", t, func() {
		table := annotations.Table{"Iron Man": {Note: "first"}, "The Avengers": {Note: "team"}}
		e := render.NewEngine(render.WithMetrics(false), render.WithAnnotations(table))
		req := render.Request{Dataset: smallDataset(), Width: 900, Height: 300}

		l, err := e.LayoutTimeline(req)
		So(err, ShouldBeNil)

		Convey("Then every release has a marker inside the viewport in time order", func() {
			So(l.Markers, ShouldHaveLength, 5)
			for i, m := range l.Markers {
				So(m.X, ShouldBeBetweenOrEqual, 0, 900)
				if i > 0 {
					So(m.X, ShouldBeGreaterThanOrEqualTo, l.Markers[i-1].X)
				}
			}
		})

		Convey("Then year ticks cover the domain", func() {
			So(l.Ticks[0].Label, ShouldEqual, "2008")
			So(l.Ticks[len(l.Ticks)-1].Label, ShouldEqual, "2022")
		})

		Convey("Then phase bands are one per phase and do not share a lane when overlapping", func() {
			So(l.Bands, ShouldHaveLength, 3)
			for _, b := range l.Bands {
				So(b.Y, ShouldBeGreaterThan, l.Baseline)
			}
		})

		Convey("Then only important releases are labelled while idle", func() {
			So(l.Labels, ShouldHaveLength, 2)
			owners := []string{l.Labels[0].OwnerID, l.Labels[1].OwnerID}
			So(owners, ShouldContain, "a")
			So(owners, ShouldContain, "c")
			So(l.Labels[0].Note, ShouldNotBeEmpty)
		})

		Convey("When a release is hovered its highlight set is labelled instead", func() {
			req.Highlight = model.NewHighlightSet("b", "a", "d")
			l, err := e.LayoutTimeline(req)
			So(err, ShouldBeNil)
			So(l.Focus, ShouldEqual, "b")
			So(l.Labels, ShouldHaveLength, 3)
			for _, m := range l.Markers {
				So(m.Highlighted, ShouldEqual, m.ID == "a" || m.ID == "b" || m.ID == "d")
			}
		})

		Convey("Then the layout is deterministic", func() {
			again, err := e.LayoutTimeline(req)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, l)
		})
	})
}

func TestLayoutTimelineSample(t *testing.T) {
	Convey("Given the sample catalog focused on a busy title", t, func() {
		ds := sampleDataset(t)
		table, err := annotations.Embedded()
		So(err, ShouldBeNil)
		e := render.NewEngine(render.WithMetrics(false), render.WithAnnotations(table))

		l, err := e.LayoutTimeline(render.Request{Dataset: ds, Width: 1200, Height: 600})
		So(err, ShouldBeNil)

		Convey("Then labels stay inside their band and the viewport", func() {
			for _, lb := range l.Labels {
				So(lb.Top, ShouldBeGreaterThanOrEqualTo, 0)
				So(lb.Bottom(), ShouldBeLessThanOrEqualTo, 600)
				if lb.Band == model.BandAbove {
					So(lb.Bottom(), ShouldBeLessThanOrEqualTo, l.Baseline)
				} else {
					So(lb.Top, ShouldBeGreaterThanOrEqualTo, l.Baseline)
				}
			}
		})

		Convey("Then a pass with nothing unresolved leaves no overlapping pair", func() {
			boxes := make([]model.LabelBox, len(l.Labels))
			for i, lb := range l.Labels {
				boxes[i] = lb.LabelBox
			}
			So(l.Unresolved, ShouldBeLessThanOrEqualTo, len(boxes))
			if l.Unresolved == 0 {
				So(geometry.CountOverlaps(boxes, 4), ShouldEqual, 0)
			}
		})
	})
}

func TestLayoutConnections(t *testing.T) {
	Convey("Given connections that nest", t, func() {
		e := render.NewEngine(render.WithMetrics(false))
		req := render.Request{Dataset: smallDataset(), Width: 900, Height: 400}

		l, err := e.LayoutConnections(req)
		So(err, ShouldBeNil)
		So(l.Arcs, ShouldHaveLength, 3)

		Convey("Then overlapping arcs take different lanes and heights", func() {
			heights := map[int]float64{}
			for _, a := range l.Arcs {
				So(a.X1, ShouldBeLessThanOrEqualTo, a.X2)
				heights[a.Lane] = a.Height
			}
			So(l.Lanes[model.SideTop], ShouldBeGreaterThanOrEqualTo, 2)
			So(heights[1], ShouldBeGreaterThan, heights[0])
			So(heights[l.Lanes[model.SideTop]-1], ShouldBeLessThanOrEqualTo, l.Baseline)
		})

		Convey("When hovering a release, arcs touching it are highlighted", func() {
			req.Highlight = model.NewHighlightSet("c", "a")
			l, err := e.LayoutConnections(req)
			So(err, ShouldBeNil)
			for _, a := range l.Arcs {
				So(a.Highlighted, ShouldEqual, a.FromID == "c" || a.ToID == "c")
			}
		})

		Convey("Connections to unknown ids are skipped", func() {
			ds := smallDataset()
			ds.Connections = append(ds.Connections, model.Connection{Type: model.RelationSpinoff, FromID: "a", ToID: "zzz", Side: model.SideBottom})
			l, err := e.LayoutConnections(render.Request{Dataset: ds, Width: 900, Height: 400})
			So(err, ShouldBeNil)
			So(l.Arcs, ShouldHaveLength, 3)
		})
	})
}

func TestLayoutDotPlot(t *testing.T) {
	Convey("Given releases sharing a year", t, func() {
		ds := smallDataset()
		ds.Titles = append(ds.Titles,
			model.Title{ID: "f", Name: "Thor", Phase: 1, Released: date(2008, 9, 1), Kind: model.KindMovie},
			model.Title{ID: "g", Name: "WandaVision", Phase: 4, Released: date(2021, 1, 15), Kind: model.KindShow},
		)
		e := render.NewEngine(render.WithMetrics(false))
		req := render.Request{Dataset: ds, Width: 900, Height: 300, Pinned: "2008"}

		l, err := e.LayoutDotPlot(req)
		So(err, ShouldBeNil)
		So(l.Dots, ShouldHaveLength, 7)
		So(l.PinnedYear, ShouldEqual, 2008)

		Convey("Then same-year movies stack above the axis and shows below", func() {
			var y2008 []render.Dot
			for _, d := range l.Dots {
				if d.Year == 2008 {
					y2008 = append(y2008, d)
				}
				if d.Kind == model.KindShow {
					So(d.Y, ShouldBeGreaterThan, l.Baseline)
				} else {
					So(d.Y, ShouldBeLessThan, l.Baseline)
				}
			}
			So(y2008, ShouldHaveLength, 2)
			So(y2008[0].X, ShouldAlmostEqual, y2008[1].X)
			So(y2008[0].Lane, ShouldNotEqual, y2008[1].Lane)
			So(y2008[0].Pinned && y2008[1].Pinned, ShouldBeTrue)
		})

		Convey("Then a year column per year is ticked", func() {
			So(l.Ticks, ShouldHaveLength, 2021-2008+1)
		})
	})

	Convey("PinnedYear only accepts four digit years", t, func() {
		So(render.PinnedYear("2019"), ShouldEqual, 2019)
		So(render.PinnedYear("m01"), ShouldEqual, 0)
		So(render.PinnedYear("12"), ShouldEqual, 0)
	})
}

func TestSelectReviews(t *testing.T) {
	Convey("Given reviews", t, func() {
		ds := smallDataset()

		Convey("A title filter keeps that title, most liked then newest first", func() {
			out := render.SelectReviews(ds, render.ReviewFilter{Title: "Iron Man"})
			So(out, ShouldHaveLength, 2)
			So(out[0].Author, ShouldEqual, "y")
		})

		Convey("A year filter joins on release year and falls back to the review date", func() {
			So(render.SelectReviews(ds, render.ReviewFilter{Year: 2021}), ShouldHaveLength, 1)
			So(render.SelectReviews(ds, render.ReviewFilter{Year: 2012}), ShouldHaveLength, 1)
		})

		Convey("Limit truncates", func() {
			out := render.SelectReviews(ds, render.ReviewFilter{Limit: 2})
			So(out, ShouldHaveLength, 2)
			So(out[0].Title, ShouldEqual, "Loki")
		})
	})
}

func TestPaint(t *testing.T) {
	Convey("Given the sample catalog", t, func() {
		ds := sampleDataset(t)
		e := render.NewEngine(render.WithMetrics(false))
		req := render.Request{Dataset: ds, Width: 1000, Height: 500, Highlight: model.NewHighlightSet(ds.Titles[0].ID)}

		for _, chart := range render.Charts {
			chart := chart
			Convey("Then "+chart+" renders well-formed SVG", func() {
				var buf bytes.Buffer
				So(e.Render(chart, req, &buf), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<svg")
				So(wellFormed(strings.NewReader(buf.String())), ShouldBeNil)
			})
		}

		Convey("Then label text is escaped", func() {
			ds := model.Dataset{Titles: []model.Title{{ID: "x", Name: "Deadpool & Wolverine", Phase: 5, Released: date(2024, 7, 26)}}}
			var buf bytes.Buffer
			err := e.Render(render.ChartTimeline, render.Request{Dataset: ds, Width: 400, Height: 200, Pinned: "x"}, &buf)
			So(err, ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "Deadpool &amp; Wolverine")
			So(wellFormed(&buf), ShouldBeNil)
		})
	})
}

type failingCloser struct{ bytes.Buffer }

func (failingCloser) Close() error { return errors.New("close failed") }

func TestWriteClosePlot(t *testing.T) {
	Convey("Given a plot and an output that fails to close", t, func() {
		p, err := render.RevenuePlot(smallDataset())
		So(err, ShouldBeNil)

		out := &failingCloser{}
		err = render.WriteClosePlot(p, 400, 300, out)

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "close failed")
		So(out.String(), ShouldContainSubstring, "<svg")
	})

	Convey("Plots without data report nothing to render", t, func() {
		_, err := render.RevenuePlot(model.Dataset{})
		So(errors.Is(err, render.ErrNothingToRender), ShouldBeTrue)
		_, err = render.RatingsPlot(model.Dataset{})
		So(errors.Is(err, render.ErrNothingToRender), ShouldBeTrue)
	})
}
