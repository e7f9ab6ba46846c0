// Package rounds derives per-round facts for one tracked player from raw
// round telemetry: combat, economy, positioning and utility stats, trade and
// first-contact flags, clutch situations, and the weighted impact score.
package rounds

import (
	"sort"

	"valtrack/internal/model"
)

// Processor derives round-level stats for a single tracked player within one
// match. TeamOf must cover every player appearing in the match.
type Processor struct {
	PlayerID   string
	PlayerTeam string
	TeamOf     map[string]string // puuid → team id
	Callouts   []model.Callout   // may be empty; positioning degrades to sentinels
}

// Facts is the full derived view of one round before scoring.
type Facts struct {
	Combat      model.CombatStats
	Economy     model.EconomyStats
	Positioning model.PositioningStats
	Utility     model.UtilityStats
	Clutch      *model.ClutchEvent // nil if no clutch situation this round
	Won         bool
}

// Process derives all round facts for the tracked player.
func (p *Processor) Process(round *model.RoundRecord, roundIndex int) Facts {
	kills := sortedKills(round)
	side := model.SideForRound(roundIndex, p.PlayerTeam)

	f := Facts{
		Combat:      p.combat(round, kills),
		Economy:     p.economy(round),
		Positioning: p.positioning(round, kills, side),
		Utility:     p.utility(round),
		Won:         round.WinningTeam == p.PlayerTeam,
	}
	f.Clutch = p.detectClutch(round, kills, roundIndex)
	return f
}

// MatchPerformance processes every round of a match in order and assembles
// the scored, ordered round-performance sequence plus any clutch events.
func (p *Processor) MatchPerformance(roundRecords []model.RoundRecord) ([]model.RoundPerformance, []model.ClutchEvent) {
	perfs := make([]model.RoundPerformance, 0, len(roundRecords))
	var clutches []model.ClutchEvent

	for i := range roundRecords {
		round := &roundRecords[i]
		facts := p.Process(round, i)

		outcome := model.OutcomeLost
		if facts.Won {
			outcome = model.OutcomeWon
		}
		perfs = append(perfs, model.RoundPerformance{
			RoundNumber: round.RoundNum,
			Outcome:     outcome,
			ImpactScore: ImpactScore(facts),
			Combat:      facts.Combat,
			Economy:     facts.Economy,
			Positioning: facts.Positioning,
			Utility:     facts.Utility,
			Suggestions: Suggestions(facts),
		})
		if facts.Clutch != nil {
			clutches = append(clutches, *facts.Clutch)
		}
	}

	sort.Slice(perfs, func(i, j int) bool { return perfs[i].RoundNumber < perfs[j].RoundNumber })
	return perfs, clutches
}

// sortedKills flattens every player's kill events for the round into a single
// list ordered by time since round start.
func sortedKills(round *model.RoundRecord) []model.KillEvent {
	var kills []model.KillEvent
	for i := range round.PlayerStats {
		kills = append(kills, round.PlayerStats[i].Kills...)
	}
	sort.Slice(kills, func(i, j int) bool {
		return kills[i].TimeSinceRoundStartMillis < kills[j].TimeSinceRoundStartMillis
	})
	return kills
}

// playerStats returns the tracked player's raw stats block for the round, or
// nil if the player has no entry.
func (p *Processor) playerStats(round *model.RoundRecord) *model.PlayerRoundStats {
	for i := range round.PlayerStats {
		if round.PlayerStats[i].PUUID == p.PlayerID {
			return &round.PlayerStats[i]
		}
	}
	return nil
}

func (p *Processor) isTeammate(puuid string) bool {
	return p.TeamOf[puuid] == p.PlayerTeam
}

// combat derives the kill/death/damage line plus trade and first-contact
// flags. The trade heuristics are deliberately loose: TradeKill is any
// in-round kill (no timestamp window), and TradedKill only requires the
// player's killer to die later in the same round, by anyone's hand.
func (p *Processor) combat(round *model.RoundRecord, kills []model.KillEvent) model.CombatStats {
	var c model.CombatStats

	ps := p.playerStats(round)
	if ps != nil {
		c.Kills = len(ps.Kills)
		var hits, headshots int
		for _, d := range ps.Damage {
			c.DamageDealt += d.Damage
			hits += d.Headshots + d.Bodyshots + d.Legshots
			headshots += d.Headshots
		}
		if hits > 0 {
			c.HeadshotPct = float64(headshots) / float64(hits) * 100
		}
	}

	killerID := ""
	deathAt := 0
	for _, k := range kills {
		if k.VictimID == p.PlayerID {
			c.Deaths = 1
			killerID = k.KillerID
			deathAt = k.TimeSinceRoundStartMillis
		}
		for _, a := range k.Assistants {
			if a == p.PlayerID {
				c.Assists++
			}
		}
	}

	// TradedKill: the player's killer was killed later in the round.
	if killerID != "" {
		for _, k := range kills {
			if k.VictimID == killerID && k.TimeSinceRoundStartMillis > deathAt {
				c.TradedKill = true
				break
			}
		}
	}
	c.TradeKill = c.Kills > 0

	// First contact: killer or victim of the chronologically earliest kill.
	if len(kills) > 0 {
		first := kills[0]
		c.FirstContact = first.KillerID == p.PlayerID || first.VictimID == p.PlayerID
	}

	return c
}

// economy copies the player's buy snapshot and computes the mean opposing
// loadout value for the round.
func (p *Processor) economy(round *model.RoundRecord) model.EconomyStats {
	var e model.EconomyStats

	if ps := p.playerStats(round); ps != nil {
		e.WeaponID = ps.Economy.WeaponID
		e.ArmorID = ps.Economy.ArmorID
		e.CreditsSpent = ps.Economy.Spent
		e.LoadoutValue = ps.Economy.LoadoutValue
	}

	var enemyTotal, enemyCount int
	for i := range round.PlayerStats {
		ps := &round.PlayerStats[i]
		if p.isTeammate(ps.PUUID) {
			continue
		}
		enemyTotal += ps.Economy.LoadoutValue
		enemyCount++
	}
	if enemyCount > 0 {
		e.EnemyLoadoutValue = enemyTotal / enemyCount
	}
	return e
}

// Utility estimation constants. Per-ability-kill damage and the 20% credit
// for small non-lethal damage entries are fixed heuristics; the telemetry
// does not attribute damage to abilities directly.
const (
	abilityKillDamage     = 60.0
	chipDamageThreshold   = 50
	chipDamageCredit      = 0.2
)

// utility estimates ability usage and damage. Casts are taken from the
// recorded per-round counters when present; otherwise the count falls back
// to ability kills (minimum 1).
func (p *Processor) utility(round *model.RoundRecord) model.UtilityStats {
	var u model.UtilityStats

	ps := p.playerStats(round)
	if ps == nil {
		return u
	}

	abilityKills := 0
	for _, k := range ps.Kills {
		if AbilitySlotFor(k.FinishingDamage) != SlotNone {
			abilityKills++
		}
	}

	u.AbilitiesUsed = ps.AbilityCasts.Total()
	if u.AbilitiesUsed == 0 {
		// Fallback approximation: ability kills, never less than 1.
		u.AbilitiesUsed = abilityKills
		if u.AbilitiesUsed < 1 {
			u.AbilitiesUsed = 1
		}
	}

	u.UtilityDamage = float64(abilityKills) * abilityKillDamage
	for _, d := range ps.Damage {
		if d.Damage < chipDamageThreshold {
			u.UtilityDamage += float64(d.Damage) * chipDamageCredit
		}
	}
	return u
}
