package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/marquee/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSessionViewJSON(t *testing.T) {
	Convey("Given an idle session view", t, func() {
		v := types.SessionView{ID: "abc", State: "idle", Highlight: []string{}, Width: 800, Height: 400}

		Convey("When encoding it", func() {
			data, err := json.Marshal(v)
			So(err, ShouldBeNil)

			Convey("Then optional fields are left out and the highlight is an empty list", func() {
				s := string(data)
				So(s, ShouldContainSubstring, `"highlight":[]`)
				So(s, ShouldNotContainSubstring, `"anchor"`)
				So(s, ShouldNotContainSubstring, `"pinned"`)
			})
		})
	})
}

func TestReloadResultJSON(t *testing.T) {
	Convey("Given a clean reload result", t, func() {
		data, err := json.Marshal(types.ReloadResult{Generation: 3, Titles: 45})
		So(err, ShouldBeNil)

		Convey("Then dropped and errors are omitted", func() {
			So(string(data), ShouldContainSubstring, `"generation":3`)
			So(string(data), ShouldNotContainSubstring, `"errors"`)
			So(string(data), ShouldNotContainSubstring, `"dropped"`)
		})
	})
}
