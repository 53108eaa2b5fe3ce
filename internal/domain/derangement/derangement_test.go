package derangement_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/okian/santa/internal/domain/derangement"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func roster(n int) []model.Participant {
	ps := make([]model.Participant, n)
	for i := range ps {
		ps[i] = model.Participant{
			Name:  fmt.Sprintf("P%02d", i),
			Email: fmt.Sprintf("p%02d@example.com", i),
		}
	}
	return ps
}

func sortedNames(as []model.Assignment, recipient bool) []string {
	out := make([]string, len(as))
	for i, a := range as {
		if recipient {
			out[i] = a.RecipientName
		} else {
			out[i] = a.GiverName
		}
	}
	sort.Strings(out)
	return out
}

func TestAssign_DerangementProperty(t *testing.T) {
	Convey("Given rosters of every small size", t, func() {
		ctx := context.Background()
		a, err := derangement.New()
		So(err, ShouldBeNil)

		for n := 2; n <= 12; n++ {
			ps := roster(n)
			want := sortedNames(func() []model.Assignment {
				out := make([]model.Assignment, n)
				for i, p := range ps {
					out[i] = model.Assignment{GiverName: p.Name, RecipientName: p.Name}
				}
				return out
			}(), false)

			for run := 0; run < 100; run++ {
				got, err := a.Assign(ctx, ps)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, n)

				for i, as := range got {
					So(as.GiverName, ShouldEqual, ps[i].Name)
					So(as.GiverEmail, ShouldEqual, ps[i].Email)
					So(as.RecipientName, ShouldNotEqual, as.GiverName)
				}
				So(sortedNames(got, false), ShouldResemble, want)
				So(sortedNames(got, true), ShouldResemble, want)
			}
		}
	})
}

func TestAssign_RecipientEmailFollowsName(t *testing.T) {
	Convey("Given a roster", t, func() {
		ps := roster(5)
		emails := map[string]string{}
		for _, p := range ps {
			emails[p.Name] = p.Email
		}
		a, err := derangement.New()
		So(err, ShouldBeNil)

		Convey("Then every recipient email should belong to the recipient", func() {
			got, err := a.Assign(context.Background(), ps)
			So(err, ShouldBeNil)
			for _, as := range got {
				So(as.RecipientEmail, ShouldEqual, emails[as.RecipientName])
			}
		})

		Convey("Then the caller's slice should be left untouched", func() {
			before := append([]model.Participant(nil), ps...)
			_, err := a.Assign(context.Background(), ps)
			So(err, ShouldBeNil)
			So(ps, ShouldResemble, before)
		})
	})
}

func TestAssign_ThreeParticipantsUniform(t *testing.T) {
	Convey("Given A, B and C", t, func() {
		ps := []model.Participant{
			{Name: "A", Email: "a@x.com"},
			{Name: "B", Email: "b@x.com"},
			{Name: "C", Email: "c@x.com"},
		}
		a, err := derangement.New()
		So(err, ShouldBeNil)

		Convey("When assigning many times", func() {
			counts := map[string]int{}
			const runs = 3000
			for i := 0; i < runs; i++ {
				got, err := a.Assign(context.Background(), ps)
				So(err, ShouldBeNil)
				counts[got[0].RecipientName+got[1].RecipientName+got[2].RecipientName]++
			}

			Convey("Then only the two derangements should appear, about equally often", func() {
				So(len(counts), ShouldEqual, 2)
				So(counts["BCA"]+counts["CAB"], ShouldEqual, runs)
				So(counts["BCA"], ShouldBeBetween, 1200, 1800)
				So(counts["CAB"], ShouldBeBetween, 1200, 1800)
			})
		})
	})
}

func TestAssign_Preconditions(t *testing.T) {
	Convey("Given an assigner", t, func() {
		ctx := context.Background()
		a, err := derangement.New()
		So(err, ShouldBeNil)

		Convey("When there is a single participant", func() {
			_, err := a.Assign(ctx, roster(1))

			Convey("Then it should fail fast with ErrInvalidInput", func() {
				So(errors.Is(err, derangement.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "at least 2 distinct participants required")
			})
		})

		Convey("When the roster is empty", func() {
			_, err := a.Assign(ctx, nil)

			Convey("Then it should fail with ErrInvalidInput", func() {
				So(errors.Is(err, derangement.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When two participants share a name", func() {
			ps := []model.Participant{
				{Name: "Sam", Email: "sam1@example.com"},
				{Name: "Sam", Email: "sam2@example.com"},
			}
			_, err := a.Assign(ctx, ps)

			Convey("Then it should fail with ErrInvalidInput naming the duplicate", func() {
				So(errors.Is(err, derangement.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"Sam"`)
			})
		})

		Convey("When a participant has a blank name", func() {
			ps := []model.Participant{{Name: "A"}, {Name: "  "}}
			_, err := a.Assign(ctx, ps)

			Convey("Then it should fail with ErrInvalidInput", func() {
				So(errors.Is(err, derangement.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestAssign_RetryCeiling(t *testing.T) {
	Convey("Given an assigner whose shuffle never moves anything", t, func() {
		calls := 0
		a, err := derangement.New(
			derangement.WithMaxAttempts(5),
			derangement.WithShuffler(func(int, func(i, j int)) { calls++ }),
		)
		So(err, ShouldBeNil)

		Convey("When assigning", func() {
			_, err := a.Assign(context.Background(), roster(4))

			Convey("Then it should give up with ErrAssignment after the ceiling", func() {
				So(errors.Is(err, derangement.ErrAssignment), ShouldBeTrue)
				So(calls, ShouldEqual, 5)
			})
		})
	})
}

func TestAssign_ContextCancelled(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a, err := derangement.New()
		So(err, ShouldBeNil)

		Convey("Then assign should stop with the context error", func() {
			_, err := a.Assign(ctx, roster(3))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestAssign_SeededRandIsReproducible(t *testing.T) {
	Convey("Given two assigners with the same seed", t, func() {
		a1, err := derangement.New(derangement.WithRand(rand.New(rand.NewPCG(7, 11))))
		So(err, ShouldBeNil)
		a2, err := derangement.New(derangement.WithRand(rand.New(rand.NewPCG(7, 11))))
		So(err, ShouldBeNil)

		Convey("Then they should produce the same pairing", func() {
			ps := roster(8)
			got1, err := a1.Assign(context.Background(), ps)
			So(err, ShouldBeNil)
			got2, err := a2.Assign(context.Background(), ps)
			So(err, ShouldBeNil)
			So(got1, ShouldResemble, got2)
		})
	})
}
