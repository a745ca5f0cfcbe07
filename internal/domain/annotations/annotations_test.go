package annotations_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/marquee/internal/domain/annotations"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEmbeddedTable(t *testing.T) {
	Convey("Given the embedded annotation table", t, func() {
		table, err := annotations.Embedded()
		So(err, ShouldBeNil)

		Convey("Then well-known titles are annotated", func() {
			a, ok := table.Lookup("Iron Man")
			So(ok, ShouldBeTrue)
			So(a.Note, ShouldNotBeEmpty)
			So(a.Tagline, ShouldEqual, "Heroes aren't born. They're built.")
		})

		Convey("And unknown titles are not", func() {
			_, ok := table.Lookup("Howard the Duck")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given a YAML table", t, func() {
		table, err := annotations.Parse([]byte("Thor:\n  note: God of thunder.\nLoki:\n  note: Variant.\n"))
		So(err, ShouldBeNil)
		So(table.Titles(), ShouldResemble, []string{"Loki", "Thor"})
	})

	Convey("Given malformed YAML", t, func() {
		_, err := annotations.Parse([]byte("Thor: [unterminated"))
		So(err, ShouldNotBeNil)
		So(errors.Is(err, annotations.ErrDecode), ShouldBeTrue)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a table on disk", t, func() {
		path := filepath.Join(t.TempDir(), "important.yaml")
		So(os.WriteFile(path, []byte("Eternals:\n  note: Celestials.\n"), 0o600), ShouldBeNil)

		table, err := annotations.Load(path)
		So(err, ShouldBeNil)
		_, ok := table.Lookup("Eternals")
		So(ok, ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		_, err := annotations.Load("/does/not/exist.yaml")
		So(err, ShouldNotBeNil)
	})
}
