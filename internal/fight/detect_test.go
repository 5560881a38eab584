package fight_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fightworker/internal/fight"
)

func TestDetectEngagements(t *testing.T) {
	alpha := a(1, "Alpha", loc(0, 0))
	bravo := a(2, "Bravo", loc(50, 0))

	Convey("Given a steady exchange between two teams", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(40, bravo, alpha, 25),
			damage(80, alpha, bravo, 20),
		}

		Convey("Then all events cluster into one engagement", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 1)
			So(engs[0].Events, ShouldHaveLength, 3)
			So(engs[0].Teams, ShouldResemble, []int{1, 2})
			So(engs[0].Start, ShouldEqual, at(0))
			So(engs[0].End, ShouldEqual, at(80))
		})
	})

	Convey("Given a gap beyond the inactivity window", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(46, bravo, alpha, 25),
		}

		Convey("Then the late event seeds its own engagement", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 2)
			So(engs[0].Events, ShouldHaveLength, 1)
			So(engs[1].Events, ShouldHaveLength, 1)
		})
	})

	Convey("Given steady activity that outlives the duration cap", t, func() {
		var events []fight.CombatEvent
		for sec := 0.0; sec <= 280; sec += 40 {
			events = append(events, damage(sec, alpha, bravo, 10))
		}

		Convey("Then the first engagement is capped at the maximum duration", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 2)
			So(engs[0].Duration(), ShouldBeLessThanOrEqualTo, fight.MaxDuration.Seconds())
			So(engs[0].End, ShouldEqual, at(240))
			So(engs[1].Start, ShouldEqual, at(280))
		})
	})

	Convey("Given a third team arriving inside the join radius", t, func() {
		charlie := a(3, "Charlie", loc(200, 0))
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(10, charlie, a(1, "Alpha", loc(150, 0)), 20),
		}

		Convey("Then the arrival is absorbed and its team joins the fight", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 1)
			So(engs[0].Teams, ShouldResemble, []int{1, 2, 3})
		})
	})

	Convey("Given a third team arriving far outside the join radius", t, func() {
		// Seed center is the mean of Alpha (0,0) and Bravo (50,0): (25,0).
		farCharlie := a(3, "Charlie", loc(525, 0))
		farAlpha := a(1, "Alpha", loc(520, 0))
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(10, farCharlie, farAlpha, 20),
		}

		Convey("Then the spatial gate rejects it and it seeds a separate engagement", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 2)
			So(engs[0].Teams, ShouldResemble, []int{1, 2})
			So(engs[1].Teams, ShouldResemble, []int{1, 3})
			So(engs[1].Start, ShouldEqual, at(10))
		})
	})

	Convey("Given a new-team arrival with no measurable locations", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(10, a(3, "Charlie", nil), a(1, "Alpha", nil), 20),
		}

		Convey("Then no distance means no admission", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 2)
			So(engs[0].Teams, ShouldResemble, []int{1, 2})
		})
	})

	Convey("Given events between two teams already in combat but far away", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			// Both teams engaged: absorbed unconditionally, no spatial check.
			damage(10, a(1, "Alpha", loc(900, 0)), a(2, "Bravo", loc(950, 0)), 20),
		}

		Convey("Then the event is absorbed without a spatial check", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 1)
			So(engs[0].Events, ShouldHaveLength, 2)
		})
	})

	Convey("Given a fixed center, later in-combat events do not move it", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(10, a(1, "Alpha", loc(290, 0)), a(2, "Bravo", loc(295, 0)), 20),
			// Charlie is 280m from the original center (25,0) but over 550m
			// from the drifted pair above; only the fixed center matters.
			damage(20, a(3, "Charlie", loc(280, 0)), a(1, "Alpha", loc(270, 0)), 20),
		}

		Convey("Then the arrival is gated against the seed center", func() {
			engs := fight.DetectEngagements(events)
			So(engs, ShouldHaveLength, 1)
			So(engs[0].Teams, ShouldResemble, []int{1, 2, 3})
		})
	})
}
