package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/marquee/internal/adapters/dataset"
	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/adapters/repository"
	service "github.com/okian/marquee/internal/app"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/types"
	"github.com/okian/marquee/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{service.WithLogger(logger.Discard())}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service over the embedded sample", t, func() {
		svc := startService()
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then the first generation is committed", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["generation"], ShouldEqual, uint64(1))
			So(stats["titles"], ShouldEqual, 45)
			So(stats["connections"].(int), ShouldBeGreaterThan, 0)
		})

		Convey("When starting twice nothing changes", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.GetStats()["generation"], ShouldEqual, uint64(1))
		})

		Convey("When reloading the generation advances", func() {
			res, err := svc.Reload(context.Background())
			So(err, ShouldBeNil)
			So(res.Generation, ShouldEqual, uint64(2))
			So(res.Titles, ShouldEqual, 45)
			So(res.Errors, ShouldBeEmpty)
		})

		Convey("When stopped it reports so", func() {
			So(svc.Stop(context.Background()), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
			_, err := svc.Reload(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

// gatedSource blocks the first Open after arm until release is closed.
type gatedSource struct {
	dataset.Source
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		Source:  dataset.FSSource{FS: dataset.Sample(), Name: "gated"},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedSource) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	g.mu.Lock()
	hold := g.armed
	g.armed = false
	g.mu.Unlock()
	if hold {
		close(g.entered)
		<-g.release
	}
	return g.Source.Open(ctx, name)
}

func TestService_ReloadGenerations(t *testing.T) {
	Convey("Given a service whose next fetch can be held", t, func() {
		src := newGatedSource()
		svc := startService(service.WithSource(src))
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("When a newer reload commits while an older one is in flight", func() {
			src.arm()
			errc := make(chan error, 1)
			go func() {
				_, err := svc.Reload(context.Background())
				errc <- err
			}()
			<-src.entered

			res, err := svc.Reload(context.Background())
			So(err, ShouldBeNil)
			So(res.Generation, ShouldEqual, uint64(3))

			close(src.release)
			stale := <-errc

			Convey("Then the older one is discarded", func() {
				So(errors.Is(stale, repository.ErrSuperseded), ShouldBeTrue)
				snap, err := svc.Snapshot(context.Background())
				So(err, ShouldBeNil)
				So(snap.Generation, ShouldEqual, uint64(3))
			})
		})

		Convey("When the reload context is cancelled nothing is committed", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := svc.Reload(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)

			snap, err := svc.Snapshot(context.Background())
			So(err, ShouldBeNil)
			So(snap.Generation, ShouldEqual, uint64(1))
		})
	})
}

func TestService_PartialDataset(t *testing.T) {
	Convey("Given a source missing the reviews file and a dangling relationship", t, func() {
		sample := dataset.Sample()
		files := fstest.MapFS{}
		for _, name := range []string{dataset.MoviesFile, dataset.BoxOfficeFile} {
			data, err := fs.ReadFile(sample, name)
			So(err, ShouldBeNil)
			files[name] = &fstest.MapFile{Data: data}
		}
		files[dataset.ShowsFile] = &fstest.MapFile{Data: []byte("id,title,phase,release_date\n")}

		svc := startService(service.WithSource(dataset.FSSource{FS: files}))
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then the dataset is still committed with the failure reported", func() {
			res, err := svc.Reload(context.Background())
			So(err, ShouldBeNil)
			So(res.Titles, ShouldEqual, 34)
			So(res.Reviews, ShouldEqual, 0)
			So(res.Errors, ShouldHaveLength, 1)
			So(res.Errors[0], ShouldContainSubstring, dataset.ReviewsFile)
			// relationships that name shows cannot resolve without them
			So(res.Dropped, ShouldNotBeEmpty)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(service.WithMaxSessions(2), service.WithResizeDebounce(0))
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		sess, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)
		So(sess.ID, ShouldNotBeEmpty)
		So(sess.State, ShouldEqual, "idle")
		So(sess.Width, ShouldEqual, 1200)

		Convey("When pointer events are applied", func() {
			So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIPointerEnter, Target: "m01"}), ShouldBeNil)
			view, err := svc.Session(ctx, sess.ID)
			So(err, ShouldBeNil)

			Convey("Then the session is focused on the entity and its neighbours", func() {
				So(view.State, ShouldEqual, "focused")
				So(view.Anchor, ShouldEqual, "m01")
				So(view.Highlight, ShouldContain, "m01")
				So(view.Highlight, ShouldContain, "m03")
			})

			Convey("Then leaving clears the highlight but not the pin", func() {
				So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIClick, Target: "2019"}), ShouldBeNil)
				So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIPointerLeave}), ShouldBeNil)
				view, err := svc.Session(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(view.State, ShouldEqual, "idle")
				So(view.Highlight, ShouldBeEmpty)
				So(view.Pinned, ShouldEqual, "2019")
			})
		})

		Convey("When events go through the queue they are applied in order", func() {
			for _, target := range []string{"m01", "m04"} {
				So(svc.Enqueue(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIPointerEnter, Target: target}), ShouldBeNil)
			}
			So(waitFor(func() bool {
				v, _ := svc.Session(ctx, sess.ID)
				return v.Anchor == "m04"
			}), ShouldBeTrue)
		})

		Convey("When an event is malformed it is rejected before queueing", func() {
			err := svc.Enqueue(ctx, model.UIEvent{Session: sess.ID, Kind: "wiggle"})
			So(errors.Is(err, service.ErrInvalidEvent), ShouldBeTrue)

			err = svc.Enqueue(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIClick})
			So(errors.Is(err, service.ErrInvalidEvent), ShouldBeTrue)
		})

		Convey("When the session is unknown", func() {
			err := svc.Enqueue(ctx, model.UIEvent{Session: "nope", Kind: model.UIPointerLeave})
			So(errors.Is(err, service.ErrUnknownSession), ShouldBeTrue)
			So(errors.Is(svc.CloseSession(ctx, "nope"), service.ErrUnknownSession), ShouldBeTrue)
		})

		Convey("When a resize is applied without debounce it commits at once", func() {
			So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIResize, Width: 640, Height: 360}), ShouldBeNil)
			view, _ := svc.Session(ctx, sess.ID)
			So(view.Width, ShouldEqual, 640)
			So(view.Height, ShouldEqual, 360)
		})

		Convey("When the session limit is reached", func() {
			_, err := svc.CreateSession(ctx)
			So(err, ShouldBeNil)
			_, err = svc.CreateSession(ctx)
			So(errors.Is(err, service.ErrTooManySessions), ShouldBeTrue)

			Convey("Then closing one frees a slot", func() {
				So(svc.CloseSession(ctx, sess.ID), ShouldBeNil)
				_, err := svc.CreateSession(ctx)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_ResizeBurst(t *testing.T) {
	Convey("Given a session with a resize debounce", t, func() {
		svc := startService(service.WithResizeDebounce(30 * time.Millisecond))
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		sess, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)

		Convey("When a burst of resizes arrives only the last one commits", func() {
			for _, w := range []float64{800, 900, 1000} {
				So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIResize, Width: w, Height: 500}), ShouldBeNil)
			}
			view, _ := svc.Session(ctx, sess.ID)
			So(view.Width, ShouldEqual, 1200)

			So(waitFor(func() bool {
				v, _ := svc.Session(ctx, sess.ID)
				return v.Width == 1000
			}), ShouldBeTrue)
			view, _ = svc.Session(ctx, sess.ID)
			So(view.Height, ShouldEqual, 500)
		})
	})
}

func TestService_Views(t *testing.T) {
	Convey("Given a started service and a focused session", t, func() {
		svc := startService()
		defer func() { _ = svc.Stop(context.Background()) }()
		ctx := context.Background()

		sess, err := svc.CreateSession(ctx)
		So(err, ShouldBeNil)
		So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIPointerEnter, Target: "m01"}), ShouldBeNil)

		Convey("Then every chart renders as SVG", func() {
			for _, chart := range render.Charts {
				var buf bytes.Buffer
				So(svc.RenderChart(ctx, chart, types.ChartQuery{Session: sess.ID}, &buf), ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<svg")
			}
		})

		Convey("Then the timeline layout carries the session highlight", func() {
			doc, err := svc.Layout(ctx, render.ChartTimeline, types.ChartQuery{Session: sess.ID})
			So(err, ShouldBeNil)
			layout, ok := doc.(render.TimelineLayout)
			So(ok, ShouldBeTrue)

			var highlighted []string
			for _, m := range layout.Markers {
				if m.Highlighted {
					highlighted = append(highlighted, m.ID)
				}
			}
			So(highlighted, ShouldContain, "m01")
			So(highlighted, ShouldContain, "m03")
		})

		Convey("Then a degenerate viewport renders nothing", func() {
			var buf bytes.Buffer
			err := svc.RenderChart(ctx, render.ChartTimeline, types.ChartQuery{Width: -1}, &buf)
			So(errors.Is(err, render.ErrNothingToRender), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Then an unknown session is reported", func() {
			_, err := svc.Layout(ctx, render.ChartDotPlot, types.ChartQuery{Session: "nope"})
			So(errors.Is(err, service.ErrUnknownSession), ShouldBeTrue)
		})

		Convey("Then reviews follow the pinned title", func() {
			So(svc.Apply(ctx, model.UIEvent{Session: sess.ID, Kind: model.UIClick, Target: "m01"}), ShouldBeNil)
			reviews, err := svc.Reviews(ctx, types.ReviewQuery{Session: sess.ID})
			So(err, ShouldBeNil)
			for _, r := range reviews {
				So(r.Title, ShouldEqual, "Iron Man")
			}
		})

		Convey("Then an explicit year filter wins over the session", func() {
			reviews, err := svc.Reviews(ctx, types.ReviewQuery{Session: sess.ID, Year: 2019, Limit: 3})
			So(err, ShouldBeNil)
			So(len(reviews), ShouldBeLessThanOrEqualTo, 3)
			for _, r := range reviews {
				So(strings.TrimSpace(r.Title), ShouldNotBeEmpty)
			}
		})
	})
}
