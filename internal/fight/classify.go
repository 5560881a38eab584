package fight

import (
	"fmt"
	"sort"
)

// ClassifyFight decides whether an enriched engagement is a genuine fight.
// The rules run strictly in priority order; the first hit wins. The returned
// reason string is for logging and auditing only.
//
// The layering encodes an escalating evidentiary bar: multiple casualties
// are self-evidently combat, a single casualty needs proof the victim was
// not simply executed, and zero casualties need proof that damage was truly
// exchanged by every participating team.
func ClassifyFight(eng *Engagement) (bool, string) {
	casualties := eng.TotalKnocks + eng.TotalKills

	// Priority 1: multiple casualties.
	if casualties >= 2 {
		return true, fmt.Sprintf("Multiple casualties: %d knocks, %d kills", eng.TotalKnocks, eng.TotalKills)
	}

	// Priority 2: lone instant kill, resistance check. Passing the check
	// does not make it a fight on its own, it only avoids rejection here.
	if eng.TotalKills == 1 && eng.TotalKnocks == 0 {
		victimTeam, ok := eng.loneKillVictimTeam()
		if ok {
			imbalance := teamSizeImbalance(eng.Events)
			threshold := resistanceThreshold(imbalance)
			dealt := 0.0
			if ts := eng.TeamStats[victimTeam]; ts != nil {
				dealt = ts.DamageDealt
			}
			if dealt < threshold {
				return false, fmt.Sprintf(
					"Single kill with no resistance: victim team %d dealt %.0f damage (threshold %.0f at %.1fx imbalance)",
					victimTeam, dealt, threshold, imbalance)
			}
		}
	}

	// Priority 3: sustained reciprocal damage with no casualties.
	if eng.TotalKnocks == 0 && eng.TotalKills == 0 {
		if eng.allTeamsDealtDamage() && eng.TotalDamage >= reciprocalDamageMin && eng.allSharesAtLeast(reciprocalShareMin) {
			return true, fmt.Sprintf("Sustained reciprocal damage: %.0f total across %d teams", eng.TotalDamage, len(eng.Teams))
		}
	}

	// Priority 4: a single knock backed by reciprocal damage.
	if eng.TotalKnocks == 1 && eng.TotalKills == 0 {
		if eng.allTeamsDealtDamage() && eng.allTeamsDealtAtLeast(singleKnockDamageMin) {
			return true, "Single knock with reciprocal damage from all teams"
		}
	}

	return false, fmt.Sprintf("Insufficient combat: %d knocks, %d kills, %.0f damage", eng.TotalKnocks, eng.TotalKills, eng.TotalDamage)
}

// loneKillVictimTeam finds the team that took the engagement's only death.
func (e *Engagement) loneKillVictimTeam() (int, bool) {
	teams := make([]int, 0, len(e.TeamStats))
	for t := range e.TeamStats {
		teams = append(teams, t)
	}
	sort.Ints(teams)
	for _, t := range teams {
		if e.TeamStats[t].Deaths > 0 {
			return t, true
		}
	}
	return 0, false
}

// teamSizeImbalance estimates the size ratio between the largest and
// smallest team by counting distinct named references across the
// engagement's clustering events. This undercounts teammates who never
// appear in a combat line of this engagement; observed behavior, kept as is.
func teamSizeImbalance(events []CombatEvent) float64 {
	names := make(map[int]map[string]bool)
	note := func(team int, name string) {
		if name == "" {
			return
		}
		if names[team] == nil {
			names[team] = make(map[string]bool)
		}
		names[team][name] = true
	}
	for i := range events {
		note(events[i].AttackerTeam, events[i].AttackerName)
		note(events[i].VictimTeam, events[i].VictimName)
	}

	max, min := 0, 0
	for _, set := range names {
		n := len(set)
		if n > max {
			max = n
		}
		if min == 0 || n < min {
			min = n
		}
	}
	if min == 0 {
		return 1
	}
	return float64(max) / float64(min)
}

// resistanceThreshold maps a team-size imbalance to the minimum damage the
// victim team must have dealt back for a lone kill to stay fight-eligible.
func resistanceThreshold(imbalance float64) float64 {
	switch {
	case imbalance >= 3:
		return resistanceThresholdHi
	case imbalance >= 2:
		return resistanceThresholdMd
	default:
		return resistanceThresholdLo
	}
}

// allTeamsDealtDamage reports whether the set of damage-dealing teams equals
// the engagement's team set exactly. A participating team with zero damage,
// or a damage-dealing team outside the corrected list, fails the check.
func (e *Engagement) allTeamsDealtDamage() bool {
	if len(e.Teams) == 0 {
		return false
	}
	inList := make(map[int]bool, len(e.Teams))
	for _, t := range e.Teams {
		inList[t] = true
		ts := e.TeamStats[t]
		if ts == nil || ts.DamageDealt <= 0 {
			return false
		}
	}
	for t, ts := range e.TeamStats {
		if ts.DamageDealt > 0 && !inList[t] {
			return false
		}
	}
	return true
}

// allSharesAtLeast reports whether every team's damage contribution meets
// the given share of the engagement total.
func (e *Engagement) allSharesAtLeast(share float64) bool {
	if e.TotalDamage <= 0 {
		return false
	}
	for _, t := range e.Teams {
		if e.TeamStats[t].DamageDealt/e.TotalDamage < share {
			return false
		}
	}
	return true
}

// allTeamsDealtAtLeast reports whether every team dealt at least min damage.
func (e *Engagement) allTeamsDealtAtLeast(min float64) bool {
	for _, t := range e.Teams {
		ts := e.TeamStats[t]
		if ts == nil || ts.DamageDealt < min {
			return false
		}
	}
	return true
}
