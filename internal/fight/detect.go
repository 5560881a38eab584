package fight

import "sort"

// DetectEngagements greedily clusters time-sorted combat events into
// engagements.
//
// Each unconsumed event seeds a new engagement anchored at a fixed center
// (the mean of the seed event's known locations). The forward scan absorbs
// events while they fall inside the rolling inactivity window and the hard
// duration cap; both bounds terminate the scan outright rather than skipping,
// since later events can only be further away in time. An event between two
// teams already in combat is absorbed unconditionally; an event introducing a
// new team must pass the spatial gate against the fixed center, otherwise it
// is left to seed its own engagement later.
func DetectEngagements(events []CombatEvent) []*Engagement {
	consumed := make([]bool, len(events))
	var engagements []*Engagement

	for i := range events {
		if consumed[i] {
			continue
		}
		seed := events[i]
		consumed[i] = true

		eng := &Engagement{
			Events: []CombatEvent{seed},
			Start:  seed.Time,
			End:    seed.Time,
			Center: meanLocation(seed.AttackerLoc, seed.VictimLoc),
		}
		inCombat := map[int]bool{
			seed.AttackerTeam: true,
			seed.VictimTeam:   true,
		}

		for j := i + 1; j < len(events); j++ {
			if consumed[j] {
				continue
			}
			cand := events[j]

			if cand.Time.Sub(eng.Start) > MaxDuration {
				break
			}
			if cand.Time.Sub(eng.End) > InactivityWindow {
				break
			}

			attackerIn := inCombat[cand.AttackerTeam]
			victimIn := inCombat[cand.VictimTeam]

			switch {
			case attackerIn && victimIn:
				eng.Events = append(eng.Events, cand)
				eng.End = cand.Time
				consumed[j] = true

			case attackerIn || victimIn:
				// Third-party arrival: every measurable location on the
				// event must sit inside the join radius of the fixed center.
				d := maxDistanceFromCenter(eng.Center, cand)
				if d == nil || *d > JoinRadiusMeters {
					continue
				}
				eng.Events = append(eng.Events, cand)
				eng.End = cand.Time
				inCombat[cand.AttackerTeam] = true
				inCombat[cand.VictimTeam] = true
				consumed[j] = true

			default:
				// Neither side engaged here; the scan order means this event
				// will seed its own engagement.
			}
		}

		eng.Teams = sortedTeams(inCombat)
		engagements = append(engagements, eng)
	}

	return engagements
}

// maxDistanceFromCenter returns the largest measurable distance from the
// engagement center to either participant of an event, or nil when nothing
// is measurable.
func maxDistanceFromCenter(center *Location, ev CombatEvent) *float64 {
	var max *float64
	for _, d := range []*float64{
		distanceMeters(center, ev.AttackerLoc),
		distanceMeters(center, ev.VictimLoc),
	} {
		if d == nil {
			continue
		}
		if max == nil || *d > *max {
			max = d
		}
	}
	return max
}

func sortedTeams(set map[int]bool) []int {
	teams := make([]int, 0, len(set))
	for t := range set {
		teams = append(teams, t)
	}
	sort.Ints(teams)
	return teams
}
