package fight

import (
	"time"
)

// Tuning constants for engagement detection.
const (
	// InactivityWindow is the rolling gap allowed between consecutive events
	// of one engagement. Sized to span most revive attempts without letting
	// an engagement drift forever.
	InactivityWindow = 45 * time.Second

	// MaxDuration is the hard cap on total engagement length, measured from
	// the seed event. Prevents sporadic rural potshots from merging into one
	// mega-fight.
	MaxDuration = 240 * time.Second

	// JoinRadiusMeters is the spatial gate for a team joining an engagement
	// already in progress, measured from the engagement's fixed center.
	JoinRadiusMeters = 300.0
)

// Thresholds used by fight classification.
const (
	reciprocalDamageMin   = 150.0 // total damage floor for a zero-casualty fight
	reciprocalShareMin    = 0.20  // per-team share floor of that total
	singleKnockDamageMin  = 75.0  // per-team damage floor when one knock landed
	resistanceThresholdLo = 25.0  // victim-team damage floor, balanced teams
	resistanceThresholdMd = 50.0  // victim-team damage floor, >=2x imbalance
	resistanceThresholdHi = 75.0  // victim-team damage floor, >=3x imbalance
)

// Scoring weights for ranking teams within an engagement.
const (
	scoreKillWeight  = 3.0
	scoreKnockWeight = 2.0
	scoreDamageScale = 100.0
)

// Kind is the closed set of combat event kinds the detector clusters.
type Kind int

const (
	Knock Kind = iota
	Kill
	Damage
)

// String returns a short label for logging and reason strings.
func (k Kind) String() string {
	switch k {
	case Knock:
		return "knock"
	case Kill:
		return "kill"
	case Damage:
		return "damage"
	default:
		return "unknown"
	}
}

// Location is a world position in centimeter-scale coordinates, as carried
// by telemetry. Distances are converted to meters at the point of use.
type Location struct {
	X, Y, Z float64
}

// CombatEvent is one inter-team combat interaction, decoded once during
// extraction so downstream stages never re-inspect raw telemetry records.
// Invariant: AttackerTeam != VictimTeam, both known.
type CombatEvent struct {
	Kind Kind
	Time time.Time

	AttackerTeam    int
	AttackerName    string
	AttackerAccount string
	AttackerLoc     *Location

	VictimTeam    int
	VictimName    string
	VictimAccount string
	VictimLoc     *Location

	// Damage is set for Damage events only.
	Damage float64
}

// PositionSample is one timestamped position observation for a player.
type PositionSample struct {
	Time time.Time
	Loc  Location
}

// TeamStats aggregates one team's numbers within a single engagement.
type TeamStats struct {
	Kills       int
	Knocks      int
	DamageDealt float64
	DamageTaken float64
	Deaths      int

	// Eliminated is true iff the team has at least one known (non-NPC)
	// player and every one of them was killed inside the engagement window.
	Eliminated bool
}

// PlayerStats aggregates one player's numbers within a single engagement.
type PlayerStats struct {
	Name      string
	AccountID string
	TeamID    int

	Knocks      int
	Kills       int
	DamageDealt float64
	DamageTaken float64
	Attacks     int

	WasKnocked bool
	KnockedAt  *time.Time
	WasKilled  bool
	KilledAt   *time.Time

	Positions []PositionSample
}

// Engagement is a spatio-temporally bounded cluster of combat events.
// Detection fills Events, Teams, Start, End and Center; enrichment fills
// the rest and replaces Teams with the corrected (NPC-filtered) list.
type Engagement struct {
	Events []CombatEvent
	Teams  []int

	Start time.Time
	End   time.Time

	// Center is fixed from the seed event's participant locations and never
	// recomputed as the cluster grows. Nil when the seed carried no
	// locations at all.
	Center *Location

	// Enrichment output.
	TeamStats       map[int]*TeamStats
	PlayerStats     map[string]*PlayerStats
	PrimaryTeam1    *int
	PrimaryTeam2    *int
	ThirdPartyTeams []int
	GeoCenter       *Location
	SpreadMeters    float64
	TotalKnocks     int
	TotalKills      int
	TotalDamage     float64
}

// Duration returns the engagement length in seconds.
func (e *Engagement) Duration() float64 {
	return e.End.Sub(e.Start).Seconds()
}

// OutcomeType classifies how a fight ended.
type OutcomeType string

const (
	OutcomeDecisiveWin OutcomeType = "DECISIVE_WIN"
	OutcomeThirdParty  OutcomeType = "THIRD_PARTY"
	OutcomeMarginalWin OutcomeType = "MARGINAL_WIN"
	OutcomeDraw        OutcomeType = "DRAW"
)

// TeamResult is one team's result within a fight.
type TeamResult string

const (
	TeamWon  TeamResult = "WON"
	TeamLost TeamResult = "LOST"
	TeamDrew TeamResult = "DRAW"
)

// MatchMeta is match-level metadata passed through into every FightRecord.
// The pipeline never validates or transforms it.
type MatchMeta struct {
	MapName   string
	GameMode  string
	GameType  string
	StartedAt time.Time
}

// ParticipantRecord is the per-player row embedded in a FightRecord.
// NPC participants and players without a team never produce one.
type ParticipantRecord struct {
	Name      string
	AccountID string
	TeamID    int

	Knocks      int
	Kills       int
	DamageDealt float64
	DamageTaken float64
	Attacks     int

	WasKnocked bool
	KnockedAt  *time.Time
	WasKilled  bool
	KilledAt   *time.Time

	// Center is the mean of the player's recorded positions during the
	// fight, nil when no position was ever observed.
	Center *Location

	// Outcome mirrors the player's team outcome for convenient storage.
	Outcome TeamResult
}

// FightRecord is the final output unit: one engagement that passed
// classification, with its outcome and participants resolved.
type FightRecord struct {
	MatchID string

	MapName   string
	GameMode  string
	GameType  string
	MatchedAt time.Time

	Start           time.Time
	End             time.Time
	DurationSeconds float64

	Teams           []int
	PrimaryTeam1    *int
	PrimaryTeam2    *int
	ThirdPartyTeams []int

	TotalKnocks int
	TotalKills  int
	TotalDamage float64

	Reason       string
	OutcomeType  OutcomeType
	WinnerTeam   *int
	LoserTeam    *int
	TeamOutcomes map[int]TeamResult

	Center       *Location
	SpreadMeters float64

	Participants []ParticipantRecord
}
