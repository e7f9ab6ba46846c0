package model

import "time"

// CompositeID builds the persisted identifier for an entity belonging to a
// player: "<playerID>_<entityID>". Stable across regenerations.
func CompositeID(playerID, entityID string) string {
	return playerID + "_" + entityID
}

// Round outcomes from the tracked player's perspective.
const (
	OutcomeWon  = "Won"
	OutcomeLost = "Lost"
)

// Sentinel values used when positioning cannot be classified.
const (
	SiteUnknown      = "Unknown"
	PositionBalanced = "Balanced"
)

// ---- Per-round derived value objects ----

// CombatStats is the tracked player's combat line for one round.
type CombatStats struct {
	Kills        int
	Deaths       int
	Assists      int
	DamageDealt  int
	HeadshotPct  float64
	TradedKill   bool // player died and the killer was later killed this round
	TradeKill    bool // player has at least one kill this round (heuristic)
	FirstContact bool // player is killer or victim of the round's earliest kill
}

// EconomyStats is the tracked player's buy context for one round.
type EconomyStats struct {
	WeaponID          string
	ArmorID           string
	CreditsSpent      int
	LoadoutValue      int
	EnemyLoadoutValue int // mean loadout value across all opponents this round
}

// PositioningStats classifies where the player played the round.
type PositioningStats struct {
	Site         string // broad region of nearest callout, or SiteUnknown
	PositionType string // role label from (side, region), or PositionBalanced
	Side         Side
}

// UtilityStats is the tracked player's ability usage for one round. Both
// fields are estimates; see the rounds package for the heuristics.
type UtilityStats struct {
	AbilitiesUsed int
	UtilityDamage float64
}

// RoundPerformance is the full derived view of one round for the tracked
// player. Produced once, immutable, ordered by RoundNumber within a match.
type RoundPerformance struct {
	RoundNumber int
	Outcome     string // OutcomeWon or OutcomeLost
	ImpactScore float64
	Combat      CombatStats
	Economy     EconomyStats
	Positioning PositioningStats
	Utility     UtilityStats
	Suggestions []string
}

// ClutchEvent records a last-player-alive situation detected in a round.
type ClutchEvent struct {
	RoundNumber int
	Opponents   int    // 1..5
	Situation   string // "1v1".."1v5"
	Won         bool
}

// ---- Season-keyed aggregates ----

// SeasonTotals is the additive counter block shared by every entity type.
// All fields merge by summation except HighestRank, which takes the maximum.
type SeasonTotals struct {
	Kills          int
	Deaths         int
	Assists        int
	Score          int
	RoundsWon      int
	RoundsLost     int
	RoundsPlayed   int
	MatchesWon     int
	MatchesLost    int
	MatchesPlayed  int
	Plants         int
	Defuses        int
	FirstKills     int
	Aces           int
	PlaytimeMillis int64
	HighestRank    int
}

// KDRatio returns kills per death, or kills when deathless.
func (t SeasonTotals) KDRatio() float64 {
	if t.Deaths == 0 {
		return float64(t.Kills)
	}
	return float64(t.Kills) / float64(t.Deaths)
}

// WinRate returns the match win percentage.
func (t SeasonTotals) WinRate() float64 {
	if t.MatchesPlayed == 0 {
		return 0
	}
	return float64(t.MatchesWon) / float64(t.MatchesPlayed) * 100
}

// SideStats is the attack-or-defense slice of a season.
type SideStats struct {
	Kills      int
	Deaths     int
	RoundsWon  int
	RoundsLost int
	// Clutch situations bucketed by opponent count: index 0 = 1v1 .. index 4 = 1v5.
	ClutchAttempts [5]int
	ClutchWins     [5]int
}

// ClutchAttemptTotal sums attempts across all buckets.
func (s SideStats) ClutchAttemptTotal() int {
	n := 0
	for _, c := range s.ClutchAttempts {
		n += c
	}
	return n
}

// ClutchWinTotal sums wins across all buckets.
func (s SideStats) ClutchWinTotal() int {
	n := 0
	for _, c := range s.ClutchWins {
		n += c
	}
	return n
}

// WinLoss is a bare win/loss tally (per-map sub-table of the agent aggregate).
type WinLoss struct {
	Wins   int
	Losses int
}

// AbilityImpact tracks per-slot casts, kills attributed to each slot, and an
// estimated damage figure apportioned pro-rata to attributed kills.
type AbilityImpact struct {
	GrenadeCasts   int
	BasicCasts     int
	SignatureCasts int
	UltimateCasts  int

	GrenadeKills   int
	BasicKills     int
	SignatureKills int
	UltimateKills  int

	// Estimated damage per slot, apportioned pro-rata to attributed kills.
	GrenadeDamage   float64
	BasicDamage     float64
	SignatureDamage float64
	UltimateDamage  float64
}

// DamageTotal sums the per-slot damage estimates.
func (a AbilityImpact) DamageTotal() float64 {
	return a.GrenadeDamage + a.BasicDamage + a.SignatureDamage + a.UltimateDamage
}

// KillTotal sums attributed kills across all slots.
func (a AbilityImpact) KillTotal() int {
	return a.GrenadeKills + a.BasicKills + a.SignatureKills + a.UltimateKills
}

// CastTotal sums casts across all slots.
func (a AbilityImpact) CastTotal() int {
	return a.GrenadeCasts + a.BasicCasts + a.SignatureCasts + a.UltimateCasts
}

// WeaponUsage is the weapon-specific block of a weapon season entry.
type WeaponUsage struct {
	Kills      int
	Damage     int
	Headshots  int
	Bodyshots  int
	Legshots   int
	RoundsUsed int // rounds where the weapon was bought or scored a kill

	// Derived from the counters above; recomputed after every merge.
	AvgKillsPerRound  float64
	AvgDamagePerRound float64
}

// Recompute refreshes the derived per-round averages.
func (w *WeaponUsage) Recompute() {
	if w.RoundsUsed == 0 {
		w.AvgKillsPerRound = 0
		w.AvgDamagePerRound = 0
		return
	}
	w.AvgKillsPerRound = float64(w.Kills) / float64(w.RoundsUsed)
	w.AvgDamagePerRound = float64(w.Damage) / float64(w.RoundsUsed)
}

// SeasonPerformance is one season's running aggregate for an entity. At most
// one entry per season id exists in an entity's season list. The nested
// blocks are populated per entity type: agents carry sides, map results and
// ability impact; maps carry sides and heatmaps; weapons carry usage.
type SeasonPerformance struct {
	SeasonID string
	Totals   SeasonTotals

	Attack     *SideStats          `json:",omitempty"`
	Defense    *SideStats          `json:",omitempty"`
	MapResults map[string]*WinLoss `json:",omitempty"`
	Ability    *AbilityImpact      `json:",omitempty"`
	Weapon     *WeaponUsage        `json:",omitempty"`

	// Heatmap coordinate lists. Append-only and unbounded; merge concatenates.
	KillLocations  []Coordinate `json:",omitempty"`
	DeathLocations []Coordinate `json:",omitempty"`
}

// ---- Persisted entity containers ----

// AgentStat aggregates one agent across seasons for the tracked player.
type AgentStat struct {
	ID       string // CompositeID(playerID, agentID)
	PlayerID string
	AgentID  string
	Name     string // display metadata; blank until enriched
	ImageURL string
	Premium  bool
	Seasons  []*SeasonPerformance
}

// MapStat aggregates one map across seasons for the tracked player.
type MapStat struct {
	ID       string
	PlayerID string
	MapID    string
	Name     string
	ImageURL string
	Premium  bool
	Seasons  []*SeasonPerformance
}

// WeaponStat aggregates one weapon across seasons for the tracked player.
type WeaponStat struct {
	ID       string
	PlayerID string
	WeaponID string
	Name     string
	ImageURL string
	Premium  bool
	Seasons  []*SeasonPerformance
}

// SeasonStat is the flat season entity (no nested per-season structure).
// Merge replaces an older record with the newer one wholesale.
type SeasonStat struct {
	ID       string // CompositeID(playerID, seasonID)
	PlayerID string
	SeasonID string
	Name     string
	Premium  bool
	Totals   SeasonTotals
}

// MatchStat is the round-by-round view of one processed match. Like
// SeasonStat it has no per-season nesting; merge replaces by identity.
type MatchStat struct {
	ID          string // CompositeID(playerID, matchID)
	PlayerID    string
	MatchID     string
	MapID       string
	SeasonID    string
	AgentID     string
	StartedAt   time.Time
	Ranked      bool
	Won         bool
	RoundsWon   int
	RoundsLost  int
	Kills       int
	Deaths      int
	Assists     int
	ImpactScore float64 // mean round impact
	Premium     bool
	Rounds      []RoundPerformance
	Clutches    []ClutchEvent
}

// KDRatio returns kills per death for the match, or kills when deathless.
func (m *MatchStat) KDRatio() float64 {
	if m.Deaths == 0 {
		return float64(m.Kills)
	}
	return float64(m.Kills) / float64(m.Deaths)
}

// StatsBundle is the pipeline output: one list per entity type, every entry
// carrying its synthesized composite identifier.
type StatsBundle struct {
	Agents  []*AgentStat
	Maps    []*MapStat
	Weapons []*WeaponStat
	Seasons []*SeasonStat
	Matches []*MatchStat
}
