package highlight_test

import (
	"testing"

	"github.com/okian/marquee/internal/domain/highlight"
	"github.com/okian/marquee/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testGraph() highlight.Graph {
	return highlight.NewGraph([]model.Connection{
		{Type: model.RelationSequel, FromID: "iron-man", ToID: "iron-man-2"},
		{Type: model.RelationCrossover, FromID: "iron-man", ToID: "avengers"},
		{Type: model.RelationSequel, FromID: "thor", ToID: "thor-2"},
	})
}

func TestMachineHover(t *testing.T) {
	Convey("Given an idle machine", t, func() {
		m := highlight.New(testGraph())
		So(m.State(), ShouldEqual, highlight.Idle)

		Convey("When the pointer enters a connected title", func() {
			set := m.Enter("iron-man")

			Convey("Then the set holds the anchor and its neighbours", func() {
				So(m.State(), ShouldEqual, highlight.Focused)
				So(set.AnchorID, ShouldEqual, "iron-man")
				So(set.IDs(), ShouldResemble, []string{"avengers", "iron-man", "iron-man-2"})
			})

			Convey("And leaving clears it", func() {
				m.Leave()
				_, ok := m.Current()
				So(ok, ShouldBeFalse)
				So(m.State(), ShouldEqual, highlight.Idle)
			})
		})

		Convey("When the pointer enters an unconnected title", func() {
			set := m.Enter("eternals")

			Convey("Then only the anchor is highlighted", func() {
				So(set.IDs(), ShouldResemble, []string{"eternals"})
			})
		})

		Convey("When hovering moves between titles", func() {
			m.Enter("iron-man")
			set := m.Enter("thor")

			Convey("Then the set is recomputed from scratch", func() {
				So(set.Contains("avengers"), ShouldBeFalse)
				So(set.Contains("thor-2"), ShouldBeTrue)
			})
		})
	})
}

func TestMachinePin(t *testing.T) {
	Convey("Given a machine with a pinned year", t, func() {
		m := highlight.New(testGraph())
		So(m.Toggle("2012"), ShouldEqual, "2012")

		Convey("When hover comes and goes", func() {
			m.Enter("iron-man")
			m.Leave()

			Convey("Then the pin survives", func() {
				got, ok := m.Pinned()
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, "2012")
			})
		})

		Convey("When a different key is toggled", func() {
			So(m.Toggle("2019"), ShouldEqual, "2019")
		})

		Convey("When the same key is toggled", func() {
			So(m.Toggle("2012"), ShouldEqual, "")
			_, ok := m.Pinned()
			So(ok, ShouldBeFalse)
		})

		Convey("When the pin is cleared", func() {
			m.ClearPin()
			_, ok := m.Pinned()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMachineCallbacks(t *testing.T) {
	Convey("Given a machine with transition callbacks", t, func() {
		var focused []model.HighlightSet
		idles := 0
		m := highlight.New(testGraph(),
			highlight.WithOnFocus(func(s model.HighlightSet) { focused = append(focused, s) }),
			highlight.WithOnIdle(func() { idles++ }),
		)

		Convey("Then focus runs once per enter and idle once per leave from focus", func() {
			m.Enter("thor")
			m.Leave()
			m.Leave()
			So(len(focused), ShouldEqual, 1)
			So(focused[0].AnchorID, ShouldEqual, "thor")
			So(idles, ShouldEqual, 1)
		})
	})
}

func TestMachineGraphSwap(t *testing.T) {
	Convey("Given a focused machine", t, func() {
		m := highlight.New(testGraph())
		m.Enter("iron-man")

		Convey("When the graph is replaced", func() {
			m.SetGraph(highlight.Graph{})

			Convey("Then the focused set shrinks to the anchor", func() {
				set, ok := m.Current()
				So(ok, ShouldBeTrue)
				So(set.IDs(), ShouldResemble, []string{"iron-man"})
			})
		})
	})
}
