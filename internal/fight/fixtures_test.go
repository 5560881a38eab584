package fight_test

import (
	"time"

	"fightworker/internal/fight"
)

// All tests share one fixed match start; everything is offset in seconds
// from it.
var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

// loc builds a location from meter-scale coordinates; telemetry stores
// centimeters, so 1 m = 100 units.
func loc(xMeters, yMeters float64) *fight.Location {
	return &fight.Location{X: xMeters * 100, Y: yMeters * 100, Z: 0}
}

type actor struct {
	team int
	name string
	loc  *fight.Location
}

func a(team int, name string, l *fight.Location) actor {
	return actor{team: team, name: name, loc: l}
}

func combatEvent(kind fight.Kind, sec float64, attacker, victim actor, damage float64) fight.CombatEvent {
	return fight.CombatEvent{
		Kind:            kind,
		Time:            at(sec),
		AttackerTeam:    attacker.team,
		AttackerName:    attacker.name,
		AttackerAccount: "acct." + attacker.name,
		AttackerLoc:     attacker.loc,
		VictimTeam:      victim.team,
		VictimName:      victim.name,
		VictimAccount:   "acct." + victim.name,
		VictimLoc:       victim.loc,
		Damage:          damage,
	}
}

func knock(sec float64, attacker, victim actor) fight.CombatEvent {
	return combatEvent(fight.Knock, sec, attacker, victim, 0)
}

func kill(sec float64, attacker, victim actor) fight.CombatEvent {
	return combatEvent(fight.Kill, sec, attacker, victim, 0)
}

func damage(sec float64, attacker, victim actor, amount float64) fight.CombatEvent {
	return combatEvent(fight.Damage, sec, attacker, victim, amount)
}

// enriched runs detection plus enrichment over one event list and returns
// all engagements.
func enriched(events []fight.CombatEvent) []*fight.Engagement {
	engs := fight.DetectEngagements(events)
	for _, eng := range engs {
		fight.EnrichEngagement(eng, events)
	}
	return engs
}
