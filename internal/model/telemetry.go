package model

import "time"

// Team color labels as reported by the telemetry API.
const (
	TeamRed  = "Red"
	TeamBlue = "Blue"
)

// Side of the map a team plays in a given round.
type Side int

const (
	SideUnknown Side = iota
	SideAttack
	SideDefense
)

func (s Side) String() string {
	switch s {
	case SideAttack:
		return "Attack"
	case SideDefense:
		return "Defense"
	default:
		return "?"
	}
}

// SideSwapRound is the first round of the second half: the team that attacked
// rounds 0-11 defends from round 12 on. Red attacks the first half, Blue the
// second. This is the fixed convention used throughout; overtime is not
// special-cased.
const SideSwapRound = 12

// SideForRound returns which side the given team plays in the given round.
func SideForRound(roundIndex int, teamID string) Side {
	if roundIndex < SideSwapRound {
		if teamID == TeamRed {
			return SideAttack
		}
		return SideDefense
	}
	if teamID == TeamBlue {
		return SideAttack
	}
	return SideDefense
}

// ---- Raw telemetry handed to the pipeline by the API client ----

// MatchRecord is the raw telemetry for one match. It is owned by the caller
// and read-only to the pipeline.
type MatchRecord struct {
	MatchID          string
	MapID            string
	SeasonID         string
	Mode             string // e.g. "Competitive", "Unrated"
	Ranked           bool
	GameLengthMillis int64
	StartedAt        time.Time
	Players          []MatchPlayer
	Teams            []TeamRecord
	Rounds           []RoundRecord
}

// MatchPlayer is one participant's match-level entry.
type MatchPlayer struct {
	PUUID        string
	Name         string
	Tag          string
	TeamID       string // TeamRed or TeamBlue
	AgentID      string
	Rank         int // competitive tier at match time; 0 if unranked
	Kills        int
	Deaths       int
	Assists      int
	Score        int
	Headshots    int
	Bodyshots    int
	Legshots     int
	DamageDealt  int
	DamageTaken  int
	AbilityCasts AbilityCasts
}

// AbilityCasts counts ability activations per slot across a match or round.
type AbilityCasts struct {
	Grenade  int // C slot
	Ability1 int // Q slot
	Ability2 int // E slot (signature)
	Ultimate int // X slot
}

// Total returns the number of casts across all four slots.
func (a AbilityCasts) Total() int {
	return a.Grenade + a.Ability1 + a.Ability2 + a.Ultimate
}

// TeamRecord is one team's match-level result.
type TeamRecord struct {
	TeamID       string
	Won          bool
	RoundsWon    int
	RoundsPlayed int
}

// RoundRecord is the telemetry for a single round.
type RoundRecord struct {
	RoundNum    int
	WinningTeam string
	BombPlanted bool
	BombDefused bool
	PlanterID   string // empty if no plant
	DefuserID   string // empty if no defuse
	PlayerStats []PlayerRoundStats
}

// PlayerRoundStats holds one player's raw events within a round.
type PlayerRoundStats struct {
	PUUID        string
	Kills        []KillEvent
	Damage       []DamageEvent
	Economy      EconomySnapshot
	AbilityCasts AbilityCasts
	Score        int
}

// KillEvent is one kill made by the owning player.
type KillEvent struct {
	TimeSinceRoundStartMillis int
	KillerID                  string
	VictimID                  string
	VictimLocation            Coordinate
	Assistants                []string
	FinishingDamage           FinishingDamage
	PlayerLocations           []PlayerLocation
}

// FinishingDamage describes what landed the killing blow.
type FinishingDamage struct {
	DamageType string // "Weapon", "Ability", "Bomb", ...
	DamageItem string // weapon id, or ability slot name for ability kills
}

// PlayerLocation is a player's recorded position at the moment of a kill.
type PlayerLocation struct {
	PUUID       string
	Location    Coordinate
	ViewRadians float64
}

// Coordinate is a 2D map-space position.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DamageEvent is damage dealt by the owning player to one receiver this round.
type DamageEvent struct {
	ReceiverID string
	Damage     int
	Headshots  int
	Bodyshots  int
	Legshots   int
}

// EconomySnapshot is the player's buy for the round.
type EconomySnapshot struct {
	WeaponID     string
	ArmorID      string
	LoadoutValue int
	Spent        int
	Remaining    int
}

// Callout is a named, geo-located landmark on a map. SuperRegion is the broad
// label ("A", "B", "Mid", ...); Region is the sub-label within it.
type Callout struct {
	Region      string
	SuperRegion string
	Location    Coordinate
}
