// Package aggregator folds per-match, per-round derived facts into
// season-keyed running aggregates for agents, maps, weapons and seasons, and
// builds the per-match round breakdown. Accumulator maps are built fresh for
// every generation pass and flattened into a StatsBundle at the end.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"valtrack/internal/model"
	"valtrack/internal/rounds"
)

// CalloutSource supplies the named-landmark table for a map. Implementations
// are expected to cache per generation pass; the aggregator calls it once per
// match.
type CalloutSource interface {
	MapCallouts(ctx context.Context, mapID string) ([]model.Callout, error)
}

// Generator runs one telemetry-to-aggregate generation pass for a player.
type Generator struct {
	Logger   *slog.Logger
	Callouts CalloutSource // optional; positioning degrades to sentinels without it
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Generate processes every match sequentially and returns the aggregate
// bundle. A failure in one match is logged and that match is skipped; all
// other matches still contribute.
func (g *Generator) Generate(ctx context.Context, playerID string, matches []model.MatchRecord) *model.StatsBundle {
	agents := make(map[string]*model.AgentStat)
	mapStats := make(map[string]*model.MapStat)
	weapons := make(map[string]*model.WeaponStat)
	seasons := make(map[string]*model.SeasonStat)
	var matchStats []*model.MatchStat

	for i := range matches {
		m := &matches[i]
		if err := g.processMatch(ctx, playerID, m, agents, mapStats, weapons, seasons, &matchStats); err != nil {
			g.logger().Warn("skipping match", "match_id", m.MatchID, "err", err)
		}
	}

	return &model.StatsBundle{
		Agents:  flatten(agents),
		Maps:    flatten(mapStats),
		Weapons: flatten(weapons),
		Seasons: flatten(seasons),
		Matches: matchStats,
	}
}

// processMatch derives round facts once and feeds every accumulator. Any
// panic inside per-match processing is converted to an error so a bad match
// cannot abort the rest of the pass.
func (g *Generator) processMatch(
	ctx context.Context,
	playerID string,
	m *model.MatchRecord,
	agents map[string]*model.AgentStat,
	mapStats map[string]*model.MapStat,
	weapons map[string]*model.WeaponStat,
	seasons map[string]*model.SeasonStat,
	matchStats *[]*model.MatchStat,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process match %s: %v", m.MatchID, r)
		}
	}()

	mc, err := ExtractMatchContext(m, playerID)
	if err != nil {
		return err
	}

	var callouts []model.Callout
	if g.Callouts != nil {
		callouts, err = g.Callouts.MapCallouts(ctx, m.MapID)
		if err != nil {
			g.logger().Warn("callout lookup failed", "map_id", m.MapID, "err", err)
			callouts = nil
		}
	}

	proc := &rounds.Processor{
		PlayerID:   playerID,
		PlayerTeam: mc.Player.TeamID,
		TeamOf:     mc.TeamOf,
		Callouts:   callouts,
	}
	perfs, clutches := proc.MatchPerformance(m.Rounds)

	mf := &matchFacts{
		playerID: playerID,
		match:    m,
		mc:       mc,
		perfs:    perfs,
		clutches: clutches,
	}

	g.applyAgent(agents, mf)
	g.applyMap(mapStats, mf)
	g.applyWeapon(weapons, mf)
	g.applySeason(seasons, mf)
	*matchStats = append(*matchStats, buildMatchStat(mf))
	return nil
}

// matchFacts bundles everything derived from one validated match.
type matchFacts struct {
	playerID string
	match    *model.MatchRecord
	mc       *MatchContext
	perfs    []model.RoundPerformance
	clutches []model.ClutchEvent
}

// addTotals adds this match's contribution to a season totals block.
func (mf *matchFacts) addTotals(t *model.SeasonTotals) {
	for _, rp := range mf.perfs {
		t.Kills += rp.Combat.Kills
		t.Deaths += rp.Combat.Deaths
		t.Assists += rp.Combat.Assists
		if rp.Outcome == model.OutcomeWon {
			t.RoundsWon++
		} else {
			t.RoundsLost++
		}
		t.RoundsPlayed++
		if rp.Combat.Kills > 0 {
			// Simplification: counted once per round the player got any
			// kill, not true first-blood detection.
			t.FirstKills++
		}
		if rp.Combat.Kills >= 5 {
			t.Aces++
		}
	}
	for i := range mf.match.Rounds {
		r := &mf.match.Rounds[i]
		if r.PlanterID == mf.playerID {
			t.Plants++
		}
		if r.DefuserID == mf.playerID {
			t.Defuses++
		}
	}
	t.MatchesPlayed++
	if mf.mc.PlayerTeam.Won {
		t.MatchesWon++
	} else {
		t.MatchesLost++
	}
	t.Score += mf.mc.Player.Score
	t.PlaytimeMillis += mf.match.GameLengthMillis
	if mf.mc.Player.Rank > t.HighestRank {
		t.HighestRank = mf.mc.Player.Rank
	}
}

// addSides folds round results and clutch events into the attack/defense
// breakdown of a season entry, allocating the side blocks on first use.
func (mf *matchFacts) addSides(sp *model.SeasonPerformance) {
	if sp.Attack == nil {
		sp.Attack = &model.SideStats{}
	}
	if sp.Defense == nil {
		sp.Defense = &model.SideStats{}
	}
	for _, rp := range mf.perfs {
		side := sp.Defense
		if rp.Positioning.Side == model.SideAttack {
			side = sp.Attack
		}
		side.Kills += rp.Combat.Kills
		side.Deaths += rp.Combat.Deaths
		if rp.Outcome == model.OutcomeWon {
			side.RoundsWon++
		} else {
			side.RoundsLost++
		}
	}
	for _, c := range mf.clutches {
		side := sp.Defense
		if model.SideForRound(c.RoundNumber, mf.mc.Player.TeamID) == model.SideAttack {
			side = sp.Attack
		}
		idx := c.Opponents - 1
		if idx < 0 || idx >= len(side.ClutchAttempts) {
			continue
		}
		side.ClutchAttempts[idx]++
		if c.Won {
			side.ClutchWins[idx]++
		}
	}
}

// addHeatmaps appends this match's kill and death coordinates. The lists are
// append-only and unbounded; merge concatenates and nothing dedups.
func (mf *matchFacts) addHeatmaps(sp *model.SeasonPerformance) {
	for i := range mf.match.Rounds {
		r := &mf.match.Rounds[i]
		for j := range r.PlayerStats {
			ps := &r.PlayerStats[j]
			for _, k := range ps.Kills {
				if k.KillerID == mf.playerID {
					sp.KillLocations = append(sp.KillLocations, k.VictimLocation)
				}
				if k.VictimID == mf.playerID {
					sp.DeathLocations = append(sp.DeathLocations, k.VictimLocation)
				}
			}
		}
	}
}

// playerKills walks every kill event made by the tracked player.
func (mf *matchFacts) playerKills(fn func(roundIdx int, k *model.KillEvent)) {
	for i := range mf.match.Rounds {
		r := &mf.match.Rounds[i]
		for j := range r.PlayerStats {
			ps := &r.PlayerStats[j]
			if ps.PUUID != mf.playerID {
				continue
			}
			for ki := range ps.Kills {
				fn(i, &ps.Kills[ki])
			}
		}
	}
}

// seasonEntry finds or creates the season entry for the match's season id.
// An entity's season list holds at most one entry per season.
func seasonEntry(list *[]*model.SeasonPerformance, seasonID string) *model.SeasonPerformance {
	for _, sp := range *list {
		if sp.SeasonID == seasonID {
			return sp
		}
	}
	sp := &model.SeasonPerformance{SeasonID: seasonID}
	*list = append(*list, sp)
	return sp
}

// flatten converts an accumulator map to a slice sorted by composite id, so
// generation output is stable across runs.
func flatten[T any](m map[string]*T) []*T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
