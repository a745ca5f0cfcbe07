package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderCommand(t *testing.T) {
	Convey("Given the render command", t, func() {
		Convey("Help exits cleanly", func() {
			So(run([]string{"-help"}), ShouldEqual, 0)
		})

		Convey("An unknown flag is a usage error", func() {
			So(run([]string{"-nope"}), ShouldEqual, 2)
		})

		Convey("An unknown chart fails", func() {
			So(run([]string{"-out", t.TempDir(), "-charts", "pie", "-level", "error"}), ShouldEqual, 1)
		})

		Convey("A chart subset is written to the out dir", func() {
			out := t.TempDir()
			So(run([]string{"-out", out, "-charts", "timeline,ratings", "-level", "error"}), ShouldEqual, 0)

			_, err := os.Stat(filepath.Join(out, "timeline.svg"))
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(out, "ratings.svg"))
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(out, "dotplot.svg"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}
