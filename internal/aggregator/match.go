package aggregator

import "valtrack/internal/model"

// buildMatchStat assembles the per-match round breakdown entity.
func buildMatchStat(mf *matchFacts) *model.MatchStat {
	ms := &model.MatchStat{
		ID:        model.CompositeID(mf.playerID, mf.match.MatchID),
		PlayerID:  mf.playerID,
		MatchID:   mf.match.MatchID,
		MapID:     mf.match.MapID,
		SeasonID:  mf.match.SeasonID,
		AgentID:   mf.mc.Player.AgentID,
		StartedAt: mf.match.StartedAt,
		Ranked:    mf.match.Ranked,
		Won:       mf.mc.PlayerTeam.Won,
		Rounds:    mf.perfs,
		Clutches:  mf.clutches,
	}

	var impactSum float64
	for _, rp := range mf.perfs {
		ms.Kills += rp.Combat.Kills
		ms.Deaths += rp.Combat.Deaths
		ms.Assists += rp.Combat.Assists
		if rp.Outcome == model.OutcomeWon {
			ms.RoundsWon++
		} else {
			ms.RoundsLost++
		}
		impactSum += rp.ImpactScore
	}
	if len(mf.perfs) > 0 {
		ms.ImpactScore = impactSum / float64(len(mf.perfs))
	}
	return ms
}
