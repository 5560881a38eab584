package fight

import (
	"sort"

	"fightworker/internal/telemetry"
)

// Summary carries pipeline counters for logging and instrumentation.
type Summary struct {
	CombatEvents int
	Engagements  int
	Fights       int
}

// Track runs the full fight-tracking pipeline for one match: extraction,
// engagement detection, enrichment, classification and outcome resolution.
//
// It is a pure function of (events, matchID, meta): no I/O, no clock reads,
// no shared state, so repeated invocations yield identical results and
// callers can process matches in parallel freely.
func Track(events []telemetry.Event, matchID string, meta MatchMeta) ([]FightRecord, Summary) {
	combat := ExtractCombatEvents(events)
	engagements := DetectEngagements(combat)

	var fights []FightRecord
	for _, eng := range engagements {
		EnrichEngagement(eng, combat)

		isFight, reason := ClassifyFight(eng)
		if !isFight {
			continue
		}

		outcome := ResolveOutcome(eng.Teams, eng.TeamStats)
		fights = append(fights, buildRecord(eng, matchID, meta, reason, outcome))
	}

	return fights, Summary{
		CombatEvents: len(combat),
		Engagements:  len(engagements),
		Fights:       len(fights),
	}
}

// buildRecord freezes one qualified engagement into its output form.
func buildRecord(eng *Engagement, matchID string, meta MatchMeta, reason string, outcome Outcome) FightRecord {
	rec := FightRecord{
		MatchID:         matchID,
		MapName:         meta.MapName,
		GameMode:        meta.GameMode,
		GameType:        meta.GameType,
		MatchedAt:       meta.StartedAt,
		Start:           eng.Start,
		End:             eng.End,
		DurationSeconds: eng.Duration(),
		Teams:           eng.Teams,
		PrimaryTeam1:    eng.PrimaryTeam1,
		PrimaryTeam2:    eng.PrimaryTeam2,
		ThirdPartyTeams: eng.ThirdPartyTeams,
		TotalKnocks:     eng.TotalKnocks,
		TotalKills:      eng.TotalKills,
		TotalDamage:     eng.TotalDamage,
		Reason:          reason,
		OutcomeType:     outcome.Type,
		WinnerTeam:      outcome.WinnerTeam,
		LoserTeam:       outcome.LoserTeam,
		TeamOutcomes:    outcome.PerTeam,
		Center:          eng.GeoCenter,
		SpreadMeters:    eng.SpreadMeters,
	}

	names := make([]string, 0, len(eng.PlayerStats))
	for name := range eng.PlayerStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := eng.PlayerStats[name]
		var samples []*Location
		for i := range ps.Positions {
			samples = append(samples, &ps.Positions[i].Loc)
		}
		rec.Participants = append(rec.Participants, ParticipantRecord{
			Name:        ps.Name,
			AccountID:   ps.AccountID,
			TeamID:      ps.TeamID,
			Knocks:      ps.Knocks,
			Kills:       ps.Kills,
			DamageDealt: ps.DamageDealt,
			DamageTaken: ps.DamageTaken,
			Attacks:     ps.Attacks,
			WasKnocked:  ps.WasKnocked,
			KnockedAt:   ps.KnockedAt,
			WasKilled:   ps.WasKilled,
			KilledAt:    ps.KilledAt,
			Center:      meanLocation(samples...),
			Outcome:     outcome.PerTeam[ps.TeamID],
		})
	}
	sort.SliceStable(rec.Participants, func(i, j int) bool {
		if rec.Participants[i].TeamID != rec.Participants[j].TeamID {
			return rec.Participants[i].TeamID < rec.Participants[j].TeamID
		}
		return rec.Participants[i].Name < rec.Participants[j].Name
	})

	return rec
}
