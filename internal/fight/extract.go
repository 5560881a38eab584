package fight

import (
	"sort"
	"time"

	"fightworker/internal/telemetry"
)

// ExtractCombatEvents pulls the inter-team knock, kill and damage events out
// of a raw telemetry stream and returns them sorted by timestamp ascending.
//
// An event survives extraction only when both sides carry a known team id,
// the teams differ, and (for damage events) damage is positive. Events whose
// timestamp fails to parse are dropped rather than failing the match.
func ExtractCombatEvents(events []telemetry.Event) []CombatEvent {
	var out []CombatEvent
	for i := range events {
		ev := &events[i]

		var kind Kind
		var attacker, victim *telemetry.Character
		var damage float64

		switch ev.Type {
		case telemetry.TypeMakeGroggy:
			kind, attacker, victim = Knock, ev.Attacker, ev.Victim
		case telemetry.TypeKill, telemetry.TypeKillLegacy:
			kind, attacker, victim = Kill, ev.KillCredit(), ev.Victim
		case telemetry.TypeTakeDamage:
			if ev.Damage <= 0 {
				continue
			}
			kind, attacker, victim = Damage, ev.Attacker, ev.Victim
			damage = ev.Damage
		default:
			continue
		}

		if attacker == nil || victim == nil {
			continue
		}
		if attacker.TeamID == nil || victim.TeamID == nil {
			continue
		}
		if *attacker.TeamID == *victim.TeamID {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp)
		if err != nil {
			continue
		}

		out = append(out, CombatEvent{
			Kind:            kind,
			Time:            ts.UTC(),
			AttackerTeam:    *attacker.TeamID,
			AttackerName:    attacker.Name,
			AttackerAccount: attacker.AccountID,
			AttackerLoc:     toLocation(attacker.Location),
			VictimTeam:      *victim.TeamID,
			VictimName:      victim.Name,
			VictimAccount:   victim.AccountID,
			VictimLoc:       toLocation(victim.Location),
			Damage:          damage,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

func toLocation(l *telemetry.Location) *Location {
	if l == nil {
		return nil
	}
	return &Location{X: l.X, Y: l.Y, Z: l.Z}
}
