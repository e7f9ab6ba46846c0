package aggregator

import (
	"valtrack/internal/model"
	"valtrack/internal/rounds"
)

// applyAgent folds one match into the agent accumulator: season totals, side
// splits with clutch buckets, the per-map win/loss sub-table, ability-impact
// counters and heatmaps.
func (g *Generator) applyAgent(agents map[string]*model.AgentStat, mf *matchFacts) {
	agentID := mf.mc.Player.AgentID
	if agentID == "" {
		return
	}

	stat, ok := agents[agentID]
	if !ok {
		stat = &model.AgentStat{
			ID:       model.CompositeID(mf.playerID, agentID),
			PlayerID: mf.playerID,
			AgentID:  agentID,
		}
		agents[agentID] = stat
	}

	sp := seasonEntry(&stat.Seasons, mf.match.SeasonID)
	mf.addTotals(&sp.Totals)
	mf.addSides(sp)
	mf.addHeatmaps(sp)

	if sp.MapResults == nil {
		sp.MapResults = make(map[string]*model.WinLoss)
	}
	wl, ok := sp.MapResults[mf.match.MapID]
	if !ok {
		wl = &model.WinLoss{}
		sp.MapResults[mf.match.MapID] = wl
	}
	if mf.mc.PlayerTeam.Won {
		wl.Wins++
	} else {
		wl.Losses++
	}

	mf.addAbilityImpact(sp)
}

// addAbilityImpact records cast counts from the match-level counters and
// attributes ability kills per slot from finishing-damage markers. The
// estimated ability damage for the match is apportioned to slots pro-rata by
// attributed kills.
func (mf *matchFacts) addAbilityImpact(sp *model.SeasonPerformance) {
	if sp.Ability == nil {
		sp.Ability = &model.AbilityImpact{}
	}
	ab := sp.Ability

	casts := mf.mc.Player.AbilityCasts
	ab.GrenadeCasts += casts.Grenade
	ab.BasicCasts += casts.Ability1
	ab.SignatureCasts += casts.Ability2
	ab.UltimateCasts += casts.Ultimate

	var grenade, basic, signature, ultimate int
	mf.playerKills(func(_ int, k *model.KillEvent) {
		switch rounds.AbilitySlotFor(k.FinishingDamage) {
		case rounds.SlotGrenade:
			grenade++
		case rounds.SlotBasic:
			basic++
		case rounds.SlotSignature:
			signature++
		case rounds.SlotUltimate:
			ultimate++
		}
	})
	ab.GrenadeKills += grenade
	ab.BasicKills += basic
	ab.SignatureKills += signature
	ab.UltimateKills += ultimate

	total := grenade + basic + signature + ultimate
	if total == 0 {
		return
	}
	var utilityDamage float64
	for _, rp := range mf.perfs {
		utilityDamage += rp.Utility.UtilityDamage
	}
	share := utilityDamage / float64(total)
	ab.GrenadeDamage += share * float64(grenade)
	ab.BasicDamage += share * float64(basic)
	ab.SignatureDamage += share * float64(signature)
	ab.UltimateDamage += share * float64(ultimate)
}
