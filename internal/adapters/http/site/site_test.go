package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/marquee/internal/adapters/dataset"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered site", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("Then the root redirects to the dashboard", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/dashboard")
		})

		Convey("Then every sample file is served as CSV", func() {
			for _, name := range dataset.Files {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest("GET", "/data/"+name, nil))
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/csv; charset=utf-8")
				So(w.Body.Len(), ShouldBeGreaterThan, 0)
			}
		})

		Convey("Then unknown files are 404", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", "/data/secrets.csv", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then other root paths are not claimed", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", "/some-asset", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDataHandlerAsSource(t *testing.T) {
	Convey("Given a server exposing the sample data", t, func() {
		srv := httptest.NewServer(DataHandler())
		defer srv.Close()

		Convey("When loading through an HTTP source", func() {
			loader := dataset.NewLoader(dataset.NewHTTPSource(srv.URL))
			titles, err := loader.Titles(context.Background())

			Convey("Then the catalog round-trips", func() {
				So(err, ShouldBeNil)
				So(titles, ShouldHaveLength, 45)
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
