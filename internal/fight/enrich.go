package fight

import (
	"sort"
	"strings"
	"time"
)

// npcNames is the fixed denylist of AI-controlled combatant names that show
// up in telemetry alongside real players.
var npcNames = map[string]bool{
	"Commander":     true,
	"Guard":         true,
	"Pillar":        true,
	"SkySoldier":    true,
	"Soldier":       true,
	"PillarSoldier": true,
	"ZombieSoldier": true,
}

// isNPC reports whether a combatant name belongs to an AI entity: either a
// denylisted boss/guard name or the ai_ bot prefix.
func isNPC(name string) bool {
	if npcNames[name] {
		return true
	}
	return strings.HasPrefix(strings.ToLower(name), "ai_")
}

// EnrichEngagement computes per-team and per-player statistics for one
// engagement by re-scanning the full combat event list over the engagement's
// [start, end] window (inclusive). Detection only kept the clustering
// evidence; full accounting needs every event in the window between
// participating teams.
//
// After accumulation the engagement's team list is recomputed from the
// surviving (non-NPC) players, which prevents ghost teams with zero real
// players from reaching classification and outcome resolution. Team-level
// aggregates keep NPC contributions; participant output and elimination
// checks do not.
func EnrichEngagement(eng *Engagement, all []CombatEvent) {
	participant := make(map[int]bool, len(eng.Teams))
	for _, t := range eng.Teams {
		participant[t] = true
	}

	eng.TeamStats = make(map[int]*TeamStats)
	eng.PlayerStats = make(map[string]*PlayerStats)

	for i := range all {
		ev := &all[i]
		if ev.Time.Before(eng.Start) || ev.Time.After(eng.End) {
			continue
		}
		if !participant[ev.AttackerTeam] || !participant[ev.VictimTeam] {
			continue
		}

		attacker := eng.player(ev.AttackerName, ev.AttackerAccount, ev.AttackerTeam)
		victim := eng.player(ev.VictimName, ev.VictimAccount, ev.VictimTeam)
		attackerTeam := eng.team(ev.AttackerTeam)
		victimTeam := eng.team(ev.VictimTeam)

		switch ev.Kind {
		case Damage:
			attacker.DamageDealt += ev.Damage
			attacker.Attacks++
			attackerTeam.DamageDealt += ev.Damage
			victim.DamageTaken += ev.Damage
			victimTeam.DamageTaken += ev.Damage

		case Knock:
			attacker.Knocks++
			attackerTeam.Knocks++
			victim.WasKnocked = true
			if victim.KnockedAt == nil {
				t := ev.Time
				victim.KnockedAt = &t
			}

		case Kill:
			attacker.Kills++
			attackerTeam.Kills++
			victim.WasKilled = true
			if victim.KilledAt == nil {
				t := ev.Time
				victim.KilledAt = &t
			}
			victimTeam.Deaths++
		}

		attacker.samplePosition(ev.Time, ev.AttackerLoc)
		victim.samplePosition(ev.Time, ev.VictimLoc)
	}

	eng.TotalKnocks, eng.TotalKills, eng.TotalDamage = 0, 0, 0
	for _, ts := range eng.TeamStats {
		eng.TotalKnocks += ts.Knocks
		eng.TotalKills += ts.Kills
		eng.TotalDamage += ts.DamageDealt
	}

	eng.rankTeams()
	eng.summarizeGeography()
	eng.filterNPCs()
	eng.markEliminations()
	eng.Teams = eng.correctedTeams()
}

// player is the get-or-insert accessor for per-player stats, keyed by the
// telemetry player name (unique within a match).
func (e *Engagement) player(name, account string, team int) *PlayerStats {
	if ps, ok := e.PlayerStats[name]; ok {
		return ps
	}
	ps := &PlayerStats{Name: name, AccountID: account, TeamID: team}
	e.PlayerStats[name] = ps
	return ps
}

// team is the get-or-insert accessor for per-team stats.
func (e *Engagement) team(id int) *TeamStats {
	if ts, ok := e.TeamStats[id]; ok {
		return ts
	}
	ts := &TeamStats{}
	e.TeamStats[id] = ts
	return ts
}

func (p *PlayerStats) samplePosition(t time.Time, loc *Location) {
	if loc == nil {
		return
	}
	p.Positions = append(p.Positions, PositionSample{Time: t, Loc: *loc})
}

// rankTeams orders teams by engagement score and fills the primary and
// third-party slots. Ties keep ascending team-id order for determinism.
func (e *Engagement) rankTeams() {
	teams := make([]int, 0, len(e.TeamStats))
	for t := range e.TeamStats {
		teams = append(teams, t)
	}
	sort.Ints(teams)
	sort.SliceStable(teams, func(i, j int) bool {
		return engagementScore(e.TeamStats[teams[i]]) > engagementScore(e.TeamStats[teams[j]])
	})

	e.PrimaryTeam1, e.PrimaryTeam2 = nil, nil
	e.ThirdPartyTeams = nil
	if len(teams) > 0 {
		e.PrimaryTeam1 = intPtr(teams[0])
	}
	if len(teams) > 1 {
		e.PrimaryTeam2 = intPtr(teams[1])
	}
	if len(teams) > 2 {
		e.ThirdPartyTeams = append(e.ThirdPartyTeams, teams[2:]...)
	}
}

// engagementScore is the scalar team ranking: kills dominate, then knocks,
// then raw damage scaled down.
func engagementScore(ts *TeamStats) float64 {
	return scoreKillWeight*float64(ts.Kills) + scoreKnockWeight*float64(ts.Knocks) + ts.DamageDealt/scoreDamageScale
}

// summarizeGeography computes the mean of every recorded position sample and
// the maximum distance from that mean to any sample.
func (e *Engagement) summarizeGeography() {
	var locs []*Location
	for _, ps := range e.PlayerStats {
		for i := range ps.Positions {
			locs = append(locs, &ps.Positions[i].Loc)
		}
	}
	e.GeoCenter = meanLocation(locs...)
	e.SpreadMeters = 0
	if e.GeoCenter == nil {
		return
	}
	for _, l := range locs {
		if d := distanceMeters(e.GeoCenter, l); d != nil && *d > e.SpreadMeters {
			e.SpreadMeters = *d
		}
	}
}

// filterNPCs removes AI entities from the player stats map. Their damage and
// casualties stay in the team aggregates.
func (e *Engagement) filterNPCs() {
	for name := range e.PlayerStats {
		if isNPC(name) {
			delete(e.PlayerStats, name)
		}
	}
}

// markEliminations flags every team whose known players were all killed
// within the window. Runs after NPC filtering so bots never keep a team
// "alive" or count toward its wipe.
func (e *Engagement) markEliminations() {
	for id, ts := range e.TeamStats {
		members := 0
		killed := 0
		for _, ps := range e.PlayerStats {
			if ps.TeamID != id {
				continue
			}
			members++
			if ps.WasKilled {
				killed++
			}
		}
		ts.Eliminated = members > 0 && members == killed
	}
}

// correctedTeams derives the authoritative team list from the filtered
// player stats, replacing the event-derived team set from detection.
func (e *Engagement) correctedTeams() []int {
	set := make(map[int]bool)
	for _, ps := range e.PlayerStats {
		set[ps.TeamID] = true
	}
	return sortedTeams(set)
}

func intPtr(v int) *int { return &v }
