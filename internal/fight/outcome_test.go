package fight_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fightworker/internal/fight"
)

func TestResolveOutcome(t *testing.T) {
	Convey("Given a three-team fight with one team wiped", t, func() {
		teams := []int{1, 2, 3}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 2, Knocks: 1, DamageDealt: 310},
			2: {Deaths: 2, DamageDealt: 40, Eliminated: true},
			3: {Kills: 0, Knocks: 0, DamageDealt: 55},
		}

		Convey("Then it resolves as a third-party decisive result", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeThirdParty)
			So(*out.LoserTeam, ShouldEqual, 2)
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(out.PerTeam[1], ShouldEqual, fight.TeamWon)
			So(out.PerTeam[2], ShouldEqual, fight.TeamLost)
			So(out.PerTeam[3], ShouldEqual, fight.TeamDrew)
		})
	})

	Convey("Given a two-team fight with an elimination", t, func() {
		teams := []int{1, 2}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 3, DamageDealt: 400},
			2: {Deaths: 3, DamageDealt: 120, Eliminated: true},
		}

		Convey("Then the survivor takes a decisive win", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeDecisiveWin)
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(*out.LoserTeam, ShouldEqual, 2)
		})
	})

	Convey("Given no elimination but a death differential of two", t, func() {
		teams := []int{1, 2}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 3, Deaths: 1, DamageDealt: 350},
			2: {Kills: 1, Deaths: 3, DamageDealt: 140},
		}

		Convey("Then deaths decide a decisive win", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeDecisiveWin)
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(*out.LoserTeam, ShouldEqual, 2)
		})
	})

	Convey("Given a one-death margin in a bloody two-team fight", t, func() {
		teams := []int{1, 2}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 3, Deaths: 2, DamageDealt: 300},
			2: {Kills: 2, Deaths: 3, DamageDealt: 280},
		}

		Convey("Then it is a marginal win", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeMarginalWin)
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(*out.LoserTeam, ShouldEqual, 2)
		})
	})

	Convey("Given a one-death margin with three teams", t, func() {
		teams := []int{1, 2, 3}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 2, Deaths: 2, DamageDealt: 220},
			2: {Kills: 2, Deaths: 1, DamageDealt: 180},
			3: {Kills: 1, Deaths: 2, DamageDealt: 90},
		}

		Convey("Then the engagement score overrides the death ranking", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeThirdParty)
			// Teams 1 and 2 tie on kills; damage breaks the tie for team 1.
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(*out.LoserTeam, ShouldEqual, 3)
		})
	})

	Convey("Given a death draw among three teams with a dominant scorer", t, func() {
		teams := []int{1, 2, 3}
		stats := map[int]*fight.TeamStats{
			1: {Knocks: 1, DamageDealt: 200},
			2: {DamageDealt: 120},
			3: {DamageDealt: 60},
		}

		Convey("Then the top scorer wins over the bottom-ranked team", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeThirdParty)
			So(*out.WinnerTeam, ShouldEqual, 1)
			So(*out.LoserTeam, ShouldEqual, 3)
			So(out.PerTeam[2], ShouldEqual, fight.TeamDrew)
		})
	})

	Convey("Given a dead-even two-team exchange", t, func() {
		teams := []int{1, 2}
		stats := map[int]*fight.TeamStats{
			1: {Kills: 1, Deaths: 1, DamageDealt: 150},
			2: {Kills: 1, Deaths: 1, DamageDealt: 150},
		}

		Convey("Then everyone draws", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.Type, ShouldEqual, fight.OutcomeDraw)
			So(out.WinnerTeam, ShouldBeNil)
			So(out.LoserTeam, ShouldBeNil)
			So(out.PerTeam[1], ShouldEqual, fight.TeamDrew)
			So(out.PerTeam[2], ShouldEqual, fight.TeamDrew)
		})
	})

	Convey("Given every team in the list", t, func() {
		teams := []int{4, 7, 9}
		stats := map[int]*fight.TeamStats{
			4: {Kills: 1, Deaths: 0, DamageDealt: 100},
			7: {Kills: 0, Deaths: 2, DamageDealt: 90, Eliminated: true},
			9: {Kills: 1, Deaths: 0, DamageDealt: 80},
		}

		Convey("Then each team gets exactly one outcome entry", func() {
			out := fight.ResolveOutcome(teams, stats)
			So(out.PerTeam, ShouldHaveLength, 3)
			won, lost := 0, 0
			for _, r := range out.PerTeam {
				switch r {
				case fight.TeamWon:
					won++
				case fight.TeamLost:
					lost++
				}
			}
			So(won, ShouldBeLessThanOrEqualTo, 1)
			So(lost, ShouldBeLessThanOrEqualTo, 1)
		})
	})
}
