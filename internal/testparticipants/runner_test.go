package testparticipants

import (
	"context"
	"strings"
	"testing"

	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a tricky fixture config", t, func() {
		cfg := &Config{Count: 200, Domain: "north.pole", Tricky: true}

		Convey("When generating", func() {
			ps, err := Generate(context.Background(), cfg)

			Convey("Then names should be unique and emails on the domain", func() {
				So(err, ShouldBeNil)
				So(len(ps), ShouldEqual, 200)
				seen := map[string]bool{}
				for _, p := range ps {
					So(seen[p.Name], ShouldBeFalse)
					seen[p.Name] = true
					So(p.Email, ShouldEndWith, "@north.pole")
				}
			})

			Convey("Then some names should need quoting", func() {
				quoted := 0
				for _, p := range ps {
					if strings.ContainsAny(p.Name, `,"`) {
						quoted++
					}
				}
				So(quoted, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a fixture run into a temp directory", t, func() {
		cfg := &Config{Count: 15, StoreDir: t.TempDir(), Suffix: "_fixture", Tricky: true}

		Convey("Then the roster should be saved, reloaded and assignable", func() {
			stats, err := Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(stats.Generated, ShouldEqual, 15)
			So(stats.Loaded, ShouldEqual, 15)
			So(stats.Assignments, ShouldEqual, 15)
			So(stats.Artifact, ShouldEndWith, "_fixture.csv")
		})
	})

	Convey("Given too few participants", t, func() {
		_, err := Run(context.Background(), &Config{Count: 1, StoreDir: t.TempDir()})

		Convey("Then the run should be refused", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a saved roster", t, func() {
		saved := []model.Participant{{Name: "A", Email: "a@x"}, {Name: "B", Email: "b@x"}}
		good := []model.Assignment{
			{GiverName: "A", RecipientName: "B"},
			{GiverName: "B", RecipientName: "A"},
		}

		Convey("Then an intact reload and a derangement should pass", func() {
			So(verify(saved, saved, good), ShouldBeNil)
		})

		Convey("Then a changed record should fail", func() {
			loaded := []model.Participant{{Name: "A", Email: "a@x"}, {Name: "B", Email: "other@x"}}
			So(verify(saved, loaded, good), ShouldNotBeNil)
		})

		Convey("Then a self-assignment should fail", func() {
			bad := []model.Assignment{
				{GiverName: "A", RecipientName: "A"},
				{GiverName: "B", RecipientName: "B"},
			}
			So(verify(saved, saved, bad), ShouldNotBeNil)
		})
	})
}
