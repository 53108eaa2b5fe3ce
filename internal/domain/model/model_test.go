package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/santa/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewAssignment(t *testing.T) {
	convey.Convey("Given a giver and a recipient", t, func() {
		giver := model.Participant{Name: "Alice", Email: "alice@example.com"}
		recipient := model.Participant{Name: "Bob", Email: "bob@example.com"}

		convey.Convey("When building an assignment", func() {
			a := model.NewAssignment(giver, recipient)

			convey.Convey("Then both sides should be copied", func() {
				convey.So(a, convey.ShouldResemble, model.Assignment{
					GiverName:      "Alice",
					GiverEmail:     "alice@example.com",
					RecipientName:  "Bob",
					RecipientEmail: "bob@example.com",
				})
			})
		})
	})
}

func TestParseMode(t *testing.T) {
	convey.Convey("Given mode strings", t, func() {
		cases := map[string]model.Mode{
			"":        model.ModeLive,
			"live":    model.ModeLive,
			"LIVE":    model.ModeLive,
			"dry-run": model.ModeDryRun,
			"dry_run": model.ModeDryRun,
			"debug":   model.ModeDryRun,
		}

		convey.Convey("Then known values should parse", func() {
			for in, want := range cases {
				got, err := model.ParseMode(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("Then unknown values should fail", func() {
			_, err := model.ParseMode("loud")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then modes should print readably", func() {
			convey.So(model.ModeLive.String(), convey.ShouldEqual, "live")
			convey.So(model.ModeDryRun.String(), convey.ShouldEqual, "dry-run")
		})
	})
}

func TestOutcomeFailed(t *testing.T) {
	convey.Convey("Given outcomes of each status", t, func() {
		convey.So(model.Outcome{Status: model.StatusFailed, Err: errors.New("quota")}.Failed(), convey.ShouldBeTrue)
		convey.So(model.Outcome{Status: model.StatusSent}.Failed(), convey.ShouldBeFalse)
		convey.So(model.Outcome{Status: model.StatusSimulated}.Failed(), convey.ShouldBeFalse)
	})
}
