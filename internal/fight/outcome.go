package fight

// Outcome holds the resolved result of one fight.
type Outcome struct {
	Type       OutcomeType
	WinnerTeam *int
	LoserTeam  *int
	PerTeam    map[int]TeamResult
}

// ResolveOutcome determines win/loss/draw per team for a fight-qualified
// engagement. teams must be the corrected team list in ascending order; all
// tie-breaks fall back to that order so the resolution is deterministic.
//
// Branches, first match wins:
//  1. any team eliminated: most-deaths team loses, best-scoring survivor wins
//  2. death differential >= 2: max deaths loses, min deaths wins
//  3. differential == 1 with max deaths >= 2: marginal win, except with more
//     than two teams the engagement score picks winner and loser instead
//  4. draw on deaths with >2 teams: a strictly best-scoring team wins over
//     the bottom-ranked one
//  5. complete draw
func ResolveOutcome(teams []int, stats map[int]*TeamStats) Outcome {
	out := Outcome{Type: OutcomeDraw, PerTeam: make(map[int]TeamResult, len(teams))}
	for _, t := range teams {
		out.PerTeam[t] = TeamDrew
	}
	if len(teams) == 0 {
		return out
	}

	get := func(t int) *TeamStats {
		if ts := stats[t]; ts != nil {
			return ts
		}
		return &TeamStats{}
	}
	multiTeam := len(teams) > 2

	anyEliminated := false
	maxDeaths, minDeaths := get(teams[0]).Deaths, get(teams[0]).Deaths
	for _, t := range teams {
		ts := get(t)
		if ts.Eliminated {
			anyEliminated = true
		}
		if ts.Deaths > maxDeaths {
			maxDeaths = ts.Deaths
		}
		if ts.Deaths < minDeaths {
			minDeaths = ts.Deaths
		}
	}

	mostDeaths := func() int {
		loser := teams[0]
		for _, t := range teams[1:] {
			if get(t).Deaths > get(loser).Deaths {
				loser = t
			}
		}
		return loser
	}
	fewestDeaths := func() int {
		winner := teams[0]
		for _, t := range teams[1:] {
			if get(t).Deaths < get(winner).Deaths {
				winner = t
			}
		}
		return winner
	}
	bestScore := func(candidates []int) (int, bool) {
		found := false
		var best int
		for _, t := range candidates {
			if !found || scoreGreater(get(t), get(best)) {
				best, found = t, true
			}
		}
		return best, found
	}
	worstScore := func(candidates []int) (int, bool) {
		found := false
		var worst int
		for _, t := range candidates {
			if !found || scoreGreater(get(worst), get(t)) {
				worst, found = t, true
			}
		}
		return worst, found
	}

	decisiveType := OutcomeDecisiveWin
	if multiTeam {
		decisiveType = OutcomeThirdParty
	}

	// Branch 1: somebody got wiped.
	if anyEliminated {
		loser := mostDeaths()
		out.Type = decisiveType
		out.LoserTeam = intPtr(loser)
		out.PerTeam[loser] = TeamLost

		var survivors []int
		for _, t := range teams {
			if !get(t).Eliminated && t != loser {
				survivors = append(survivors, t)
			}
		}
		if winner, ok := bestScore(survivors); ok {
			out.WinnerTeam = intPtr(winner)
			out.PerTeam[winner] = TeamWon
		}
		return out
	}

	// Branch 2: clear death differential.
	if maxDeaths-minDeaths >= 2 {
		loser, winner := mostDeaths(), fewestDeaths()
		out.Type = decisiveType
		out.WinnerTeam = intPtr(winner)
		out.LoserTeam = intPtr(loser)
		out.PerTeam[winner] = TeamWon
		out.PerTeam[loser] = TeamLost
		return out
	}

	// Branch 3: one-death margin in a bloody fight.
	if maxDeaths-minDeaths == 1 && maxDeaths >= 2 {
		loser, winner := mostDeaths(), fewestDeaths()
		out.Type = OutcomeMarginalWin
		if multiTeam {
			// Deaths are too blunt with three or more teams involved; rank
			// by engagement score instead.
			best, _ := bestScore(teams)
			worst, _ := worstScore(teams)
			if best != worst {
				winner, loser = best, worst
			}
			out.Type = OutcomeThirdParty
		}
		out.WinnerTeam = intPtr(winner)
		out.LoserTeam = intPtr(loser)
		for _, t := range teams {
			out.PerTeam[t] = TeamDrew
		}
		out.PerTeam[winner] = TeamWon
		out.PerTeam[loser] = TeamLost
		return out
	}

	// Branch 4: dead even on deaths, but with >2 teams a strictly dominant
	// score still decides it.
	if multiTeam {
		ranked := make([]int, len(teams))
		copy(ranked, teams)
		// Stable selection: teams arrive ascending, scoreGreater is strict.
		for i := 0; i < len(ranked); i++ {
			for j := i + 1; j < len(ranked); j++ {
				if scoreGreater(get(ranked[j]), get(ranked[i])) {
					ranked[i], ranked[j] = ranked[j], ranked[i]
				}
			}
		}
		if scoreGreater(get(ranked[0]), get(ranked[1])) {
			winner, loser := ranked[0], ranked[len(ranked)-1]
			out.Type = OutcomeThirdParty
			out.WinnerTeam = intPtr(winner)
			out.LoserTeam = intPtr(loser)
			out.PerTeam[winner] = TeamWon
			out.PerTeam[loser] = TeamLost
			return out
		}
	}

	// Branch 5: complete draw. PerTeam already holds DRAW for everyone.
	return out
}

// scoreGreater compares two teams lexicographically on (kills, knocks,
// damage dealt). Strict: equal stats compare false both ways.
func scoreGreater(a, b *TeamStats) bool {
	if a.Kills != b.Kills {
		return a.Kills > b.Kills
	}
	if a.Knocks != b.Knocks {
		return a.Knocks > b.Knocks
	}
	return a.DamageDealt > b.DamageDealt
}
