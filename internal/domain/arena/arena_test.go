package arena_test

import (
	"testing"

	"github.com/okian/coinrush/internal/domain/arena"
	. "github.com/smartystreets/goconvey/convey"
)

func avatarAt(top, left float64) arena.Avatar {
	return arena.Avatar{Position: arena.Position{Top: top, Left: left}, Size: 3}
}

func item(id string, top, left float64) arena.Item {
	return arena.Item{ID: id, Position: arena.Position{Top: top, Left: left}, Size: 3}
}

func TestTouches(t *testing.T) {
	Convey("Given an avatar of size 3 at (50,50)", t, func() {
		a := avatarAt(50, 50)

		Convey("When an item of size 3 is one unit away", func() {
			So(arena.Touches(a, item("c", 50, 51)), ShouldBeTrue)
		})

		Convey("When the centres are exactly the combined radius apart", func() {
			So(arena.Touches(a, item("c", 50, 53)), ShouldBeFalse)
		})

		Convey("When the centres are just inside the combined radius", func() {
			So(arena.Touches(a, item("c", 50, 52.999)), ShouldBeTrue)
		})

		Convey("When the item is diagonal at a 3-4-5 distance", func() {
			big := arena.Avatar{Position: a.Position, Size: 7}
			So(arena.Distance(a.Position, arena.Position{Top: 53, Left: 54}), ShouldEqual, 5)
			So(arena.Touches(big, item("c", 53, 54)), ShouldBeFalse)
		})
	})
}

func TestStep(t *testing.T) {
	Convey("Given a position", t, func() {
		p := arena.Position{Top: 50, Left: 50}

		Convey("Each direction moves exactly one unit on its axis", func() {
			So(arena.Step(p, arena.Up), ShouldResemble, arena.Position{Top: 49, Left: 50})
			So(arena.Step(p, arena.Down), ShouldResemble, arena.Position{Top: 51, Left: 50})
			So(arena.Step(p, arena.Left), ShouldResemble, arena.Position{Top: 50, Left: 49})
			So(arena.Step(p, arena.Right), ShouldResemble, arena.Position{Top: 50, Left: 51})
			So(arena.Step(p, arena.None), ShouldResemble, p)
		})

		Convey("Movement is clamped to the arena", func() {
			So(arena.Step(arena.Position{Top: 0, Left: 0}, arena.Up).Top, ShouldEqual, 0)
			So(arena.Step(arena.Position{Top: 0, Left: 0}, arena.Left).Left, ShouldEqual, 0)
			So(arena.Step(arena.Position{Top: 100, Left: 100}, arena.Down).Top, ShouldEqual, 100)
			So(arena.Step(arena.Position{Top: 100, Left: 100}, arena.Right).Left, ShouldEqual, 100)
			So(arena.Step(arena.Position{Top: 0.5, Left: 50}, arena.Up).Top, ShouldEqual, 0)
		})
	})
}

func TestParseKey(t *testing.T) {
	Convey("Given key names", t, func() {
		cases := map[string]int{
			arena.KeyUp:    0,
			arena.KeyDown:  180,
			arena.KeyLeft:  270,
			arena.KeyRight: 90,
		}
		for key, facing := range cases {
			d, ok := arena.ParseKey(key)
			So(ok, ShouldBeTrue)
			So(d.Facing(), ShouldEqual, facing)
		}

		Convey("Unknown keys are not directions", func() {
			d, ok := arena.ParseKey("w")
			So(ok, ShouldBeFalse)
			So(d, ShouldEqual, arena.None)
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given an avatar at (50,50)", t, func() {
		a := avatarAt(50, 50)

		Convey("When a coin is one unit away", func() {
			out := arena.Resolve(a, []arena.Item{item("c1", 51, 50)}, nil, 0)

			Convey("Then it is collected and the score goes 0 -> 1", func() {
				So(out.Collected, ShouldEqual, 1)
				So(out.Score, ShouldEqual, 1)
				So(out.Coins, ShouldBeEmpty)
			})
		})

		Convey("When a banana is one unit away and the score is 5", func() {
			bananas := []arena.Item{item("b1", 50, 51)}
			out := arena.Resolve(a, nil, bananas, 5)

			Convey("Then the score is forced to zero and the banana stays", func() {
				So(out.Score, ShouldEqual, 0)
				So(out.BananaHit, ShouldBeTrue)
				So(bananas, ShouldHaveLength, 1)
			})
		})

		Convey("When several coins overlap at once", func() {
			coins := []arena.Item{item("c1", 50, 51), item("c2", 51, 50), item("c3", 90, 90)}
			out := arena.Resolve(a, coins, nil, 2)

			Convey("Then each counts exactly once and the far coin survives", func() {
				So(out.Collected, ShouldEqual, 2)
				So(out.Score, ShouldEqual, 4)
				So(out.Coins, ShouldHaveLength, 1)
				So(out.Coins[0].ID, ShouldEqual, "c3")
				So(coins, ShouldHaveLength, 3)
			})

			Convey("And evaluating again collects nothing more", func() {
				again := arena.Resolve(a, out.Coins, nil, out.Score)
				So(again.Collected, ShouldEqual, 0)
				So(again.Score, ShouldEqual, 4)
			})
		})

		Convey("When a coin and a banana are touched in the same pass", func() {
			out := arena.Resolve(a, []arena.Item{item("c1", 50, 51)}, []arena.Item{item("b1", 49, 50)}, 3)

			Convey("Then the banana wins", func() {
				So(out.Collected, ShouldEqual, 1)
				So(out.Score, ShouldEqual, 0)
			})
		})

		Convey("When nothing is near", func() {
			out := arena.Resolve(a, []arena.Item{item("c1", 10, 10)}, []arena.Item{item("b1", 90, 90)}, 7)
			So(out.Score, ShouldEqual, 7)
			So(out.BananaHit, ShouldBeFalse)
			So(out.Coins, ShouldHaveLength, 1)
		})
	})
}
