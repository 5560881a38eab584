package telemetry

// Event type discriminators for the telemetry events the worker consumes.
// The full telemetry schema has dozens of event types; everything else is
// skipped during decoding by leaving fields unset.
const (
	TypeMakeGroggy = "LogPlayerMakeGroggy"
	TypeKill       = "LogPlayerKillV2"
	TypeKillLegacy = "LogPlayerKill"
	TypeTakeDamage = "LogPlayerTakeDamage"
)

// Location is a telemetry world position in centimeter-scale coordinates.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Character is the participant sub-record carried by combat events.
// TeamID and Location are nullable in raw telemetry (spectators, NPCs in
// some modes, and malformed records), so both are pointers.
type Character struct {
	Name      string    `json:"name"`
	TeamID    *int      `json:"teamId"`
	AccountID string    `json:"accountId"`
	Location  *Location `json:"location"`
}

// Event is one raw telemetry record. Only the fields the fight-tracking
// pipeline reads are decoded; unknown fields are dropped by the decoder.
//
// Kill events attribute the kill to Finisher (KillV2) or Killer (legacy
// LogPlayerKill); both are kept so either schema version decodes.
type Event struct {
	Type      string     `json:"_T"`
	Timestamp string     `json:"_D"`
	Attacker  *Character `json:"attacker"`
	Victim    *Character `json:"victim"`
	Finisher  *Character `json:"finisher"`
	Killer    *Character `json:"killer"`
	Damage    float64    `json:"damage"`
}

// KillCredit returns the character credited with a kill event: the finisher
// when present, otherwise the legacy killer field. Nil for non-kill events.
func (e *Event) KillCredit() *Character {
	if e.Finisher != nil {
		return e.Finisher
	}
	return e.Killer
}
