package fight_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fightworker/internal/fight"
)

func TestEnrichEngagement(t *testing.T) {
	alpha := a(1, "Alpha", loc(0, 0))
	alice := a(1, "Alice", loc(10, 0))
	bravo := a(2, "Bravo", loc(50, 0))
	brian := a(2, "Brian", loc(60, 0))

	Convey("Given a two-team engagement with knocks, kills and damage", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 40),
			damage(2, bravo, alpha, 55),
			knock(5, alpha, bravo),
			kill(8, alpha, bravo),
			damage(10, alice, brian, 30),
		}
		engs := enriched(events)
		So(engs, ShouldHaveLength, 1)
		eng := engs[0]

		Convey("Then team aggregates add up", func() {
			So(eng.TeamStats[1].Knocks, ShouldEqual, 1)
			So(eng.TeamStats[1].Kills, ShouldEqual, 1)
			So(eng.TeamStats[1].DamageDealt, ShouldEqual, 70)
			So(eng.TeamStats[1].DamageTaken, ShouldEqual, 55)
			So(eng.TeamStats[2].Deaths, ShouldEqual, 1)
			So(eng.TotalKnocks, ShouldEqual, 1)
			So(eng.TotalKills, ShouldEqual, 1)
			So(eng.TotalDamage, ShouldEqual, 125)
		})

		Convey("Then player aggregates track the individuals", func() {
			So(eng.PlayerStats["Alpha"].Knocks, ShouldEqual, 1)
			So(eng.PlayerStats["Alpha"].Kills, ShouldEqual, 1)
			So(eng.PlayerStats["Alpha"].DamageDealt, ShouldEqual, 40)
			So(eng.PlayerStats["Alpha"].Attacks, ShouldEqual, 1)
			So(eng.PlayerStats["Bravo"].WasKnocked, ShouldBeTrue)
			So(eng.PlayerStats["Bravo"].WasKilled, ShouldBeTrue)
			So(eng.PlayerStats["Bravo"].KnockedAt.Equal(at(5)), ShouldBeTrue)
			So(eng.PlayerStats["Bravo"].KilledAt.Equal(at(8)), ShouldBeTrue)
		})

		Convey("Then the last event is inside the window (inclusive end)", func() {
			So(eng.PlayerStats["Brian"].DamageTaken, ShouldEqual, 30)
		})

		Convey("Then primary teams rank by engagement score", func() {
			So(*eng.PrimaryTeam1, ShouldEqual, 1)
			So(*eng.PrimaryTeam2, ShouldEqual, 2)
			So(eng.ThirdPartyTeams, ShouldBeEmpty)
		})

		Convey("Then positions produce a center and spread", func() {
			So(eng.GeoCenter, ShouldNotBeNil)
			So(eng.SpreadMeters, ShouldBeGreaterThan, 0)
		})

		Convey("Then bravo is not eliminated while a teammate survives", func() {
			So(eng.TeamStats[2].Eliminated, ShouldBeFalse)
		})
	})

	Convey("Given every known player of a team is killed", t, func() {
		events := []fight.CombatEvent{
			kill(0, alpha, bravo),
			kill(5, alice, brian),
		}
		eng := enriched(events)[0]

		Convey("Then the team is marked eliminated", func() {
			So(eng.TeamStats[2].Eliminated, ShouldBeTrue)
			So(eng.TeamStats[1].Eliminated, ShouldBeFalse)
		})
	})

	Convey("Given an NPC participates in the fight", t, func() {
		bot := a(1, "ai_sniper01", loc(5, 0))
		events := []fight.CombatEvent{
			knock(0, bot, bravo),
			damage(1, bot, bravo, 80),
			kill(3, alpha, bravo),
			damage(4, brian, alpha, 60),
		}
		eng := enriched(events)[0]

		Convey("Then its knocks and damage still count for team aggregates", func() {
			So(eng.TeamStats[1].Knocks, ShouldEqual, 1)
			So(eng.TeamStats[1].DamageDealt, ShouldEqual, 80)
		})

		Convey("Then it is excluded from player stats", func() {
			So(eng.PlayerStats, ShouldNotContainKey, "ai_sniper01")
			So(eng.PlayerStats, ShouldContainKey, "Alpha")
		})

		Convey("Then it does not affect its team's elimination check", func() {
			// Bravo died; Brian survives, so team 2 is not eliminated, and
			// the surviving bot never keeps team 1 "alive" by itself.
			So(eng.TeamStats[2].Eliminated, ShouldBeFalse)
		})
	})

	Convey("Given denylisted NPC names", t, func() {
		guard := a(3, "Guard", loc(40, 0))
		commander := a(3, "Commander", loc(45, 0))
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(2, guard, a(1, "Alpha", loc(20, 0)), 15),
			damage(3, commander, a(2, "Bravo", loc(55, 0)), 15),
		}
		eng := enriched(events)[0]

		Convey("Then the NPC-only team vanishes from the corrected team list", func() {
			So(eng.Teams, ShouldResemble, []int{1, 2})
			So(eng.PlayerStats, ShouldNotContainKey, "Guard")
			So(eng.PlayerStats, ShouldNotContainKey, "Commander")
		})
	})

	Convey("Given events outside the engagement window", t, func() {
		events := []fight.CombatEvent{
			damage(0, alpha, bravo, 30),
			damage(10, bravo, alpha, 20),
			damage(100, alpha, bravo, 500),
		}
		engs := enriched(events)
		So(engs, ShouldHaveLength, 2)

		Convey("Then the re-scan stays inside [start, end]", func() {
			So(engs[0].TotalDamage, ShouldEqual, 50)
			So(engs[1].TotalDamage, ShouldEqual, 500)
		})
	})
}
