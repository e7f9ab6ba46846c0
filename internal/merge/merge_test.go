package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valtrack/internal/model"
)

func agentStat(id string, sp ...*model.SeasonPerformance) *model.AgentStat {
	return &model.AgentStat{
		ID:       "player_" + id,
		PlayerID: "player",
		AgentID:  id,
		Seasons:  sp,
	}
}

func seasonPerf(seasonID string, kills int) *model.SeasonPerformance {
	return &model.SeasonPerformance{
		SeasonID: seasonID,
		Totals:   model.SeasonTotals{Kills: kills},
	}
}

func TestLists_EmptySides(t *testing.T) {
	s := AgentStrategy()
	newList := []*model.AgentStat{agentStat("jett")}
	oldList := []*model.AgentStat{agentStat("sage")}

	assert.Equal(t, newList, Lists(nil, s, nil, newList), "empty old side is identity")
	assert.Equal(t, oldList, Lists(nil, s, oldList, nil), "empty new side is identity")
}

func TestLists_PanicFallsBackToNewList(t *testing.T) {
	s := Strategy[*model.AgentStat]{
		Name:     "agent",
		Identity: func(a *model.AgentStat) string { return a.ID },
		Combine:  func(_, _ *model.AgentStat) *model.AgentStat { panic("boom") },
	}
	oldList := []*model.AgentStat{agentStat("jett")}
	newList := []*model.AgentStat{agentStat("jett")}

	got := Lists(nil, s, oldList, newList)
	assert.Equal(t, newList, got, "a panicking combine keeps the freshly generated list")
}

func TestBundle_AgentSeasonsSummed(t *testing.T) {
	oldSeason := seasonPerf("s1", 10)
	oldSeason.Totals.HighestRank = 15
	oldSeason.Totals.MatchesPlayed = 4
	oldSeason.MapResults = map[string]*model.WinLoss{"ascent": {Wins: 3, Losses: 1}}
	oldSeason.KillLocations = []model.Coordinate{{X: 1, Y: 1}}

	newSeason := seasonPerf("s1", 5)
	newSeason.Totals.HighestRank = 12
	newSeason.Totals.MatchesPlayed = 2
	newSeason.MapResults = map[string]*model.WinLoss{"ascent": {Wins: 2, Losses: 0}}
	newSeason.KillLocations = []model.Coordinate{{X: 2, Y: 2}}

	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("jett", oldSeason)}},
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("jett", newSeason)}},
	)

	require.Len(t, merged.Agents, 1)
	require.Len(t, merged.Agents[0].Seasons, 1)
	sp := merged.Agents[0].Seasons[0]

	assert.Equal(t, 15, sp.Totals.Kills, "counters sum")
	assert.Equal(t, 6, sp.Totals.MatchesPlayed)
	assert.Equal(t, 15, sp.Totals.HighestRank, "highest rank takes the max")
	assert.Equal(t, 5, sp.MapResults["ascent"].Wins, "map wins sum")
	assert.Equal(t, 1, sp.MapResults["ascent"].Losses)

	require.Len(t, sp.KillLocations, 2, "heatmaps concatenate, nothing dedups")
	assert.Equal(t, model.Coordinate{X: 1, Y: 1}, sp.KillLocations[0], "old points come first")
	assert.Equal(t, model.Coordinate{X: 2, Y: 2}, sp.KillLocations[1])
}

func TestBundle_DisjointSeasonsUnion(t *testing.T) {
	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("jett", seasonPerf("s1", 10))}},
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("jett", seasonPerf("s2", 5))}},
	)

	require.Len(t, merged.Agents, 1)
	require.Len(t, merged.Agents[0].Seasons, 2)
	byID := map[string]int{}
	for _, sp := range merged.Agents[0].Seasons {
		byID[sp.SeasonID] = sp.Totals.Kills
	}
	assert.Equal(t, map[string]int{"s1": 10, "s2": 5}, byID)
}

func TestBundle_UnmatchedOldEntityPreserved(t *testing.T) {
	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("sage", seasonPerf("s1", 7))}},
		&model.StatsBundle{Agents: []*model.AgentStat{agentStat("jett", seasonPerf("s1", 3))}},
	)

	require.Len(t, merged.Agents, 2)
	ids := []string{merged.Agents[0].AgentID, merged.Agents[1].AgentID}
	assert.Contains(t, ids, "sage")
	assert.Contains(t, ids, "jett")
}

func TestBundle_NameBackfilledFromOld(t *testing.T) {
	old := agentStat("jett", seasonPerf("s1", 1))
	old.Name = "Jett"
	old.ImageURL = "https://img/jett.png"
	new := agentStat("jett", seasonPerf("s1", 1))

	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Agents: []*model.AgentStat{old}},
		&model.StatsBundle{Agents: []*model.AgentStat{new}},
	)

	require.Len(t, merged.Agents, 1)
	assert.Equal(t, "Jett", merged.Agents[0].Name)
	assert.Equal(t, "https://img/jett.png", merged.Agents[0].ImageURL)
}

func TestBundle_SeasonsAndMatchesReplaced(t *testing.T) {
	oldSeason := &model.SeasonStat{ID: "player_s1", SeasonID: "s1", Totals: model.SeasonTotals{Kills: 10}}
	newSeason := &model.SeasonStat{ID: "player_s1", SeasonID: "s1", Totals: model.SeasonTotals{Kills: 99}}

	oldMatch := &model.MatchStat{ID: "player_m1", MatchID: "m1", Kills: 10}
	newMatch := &model.MatchStat{ID: "player_m1", MatchID: "m1", Kills: 25}
	keptMatch := &model.MatchStat{ID: "player_m0", MatchID: "m0", Kills: 4}

	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Seasons: []*model.SeasonStat{oldSeason}, Matches: []*model.MatchStat{oldMatch, keptMatch}},
		&model.StatsBundle{Seasons: []*model.SeasonStat{newSeason}, Matches: []*model.MatchStat{newMatch}},
	)

	require.Len(t, merged.Seasons, 1)
	assert.Equal(t, 99, merged.Seasons[0].Totals.Kills, "flat season entities replace, not sum")

	require.Len(t, merged.Matches, 2)
	byID := map[string]int{}
	for _, m := range merged.Matches {
		byID[m.MatchID] = m.Kills
	}
	assert.Equal(t, 25, byID["m1"], "re-generated match replaces the stored one")
	assert.Equal(t, 4, byID["m0"], "untouched stored match survives")
}

func TestBundle_WeaponAveragesRecomputed(t *testing.T) {
	oldSP := &model.SeasonPerformance{
		SeasonID: "s1",
		Weapon:   &model.WeaponUsage{Kills: 10, RoundsUsed: 10, AvgKillsPerRound: 1.0},
	}
	newSP := &model.SeasonPerformance{
		SeasonID: "s1",
		Weapon:   &model.WeaponUsage{Kills: 2, RoundsUsed: 2, AvgKillsPerRound: 1.0},
	}
	oldW := &model.WeaponStat{ID: "player_vandal", WeaponID: "vandal", Seasons: []*model.SeasonPerformance{oldSP}}
	newW := &model.WeaponStat{ID: "player_vandal", WeaponID: "vandal", Seasons: []*model.SeasonPerformance{newSP}}

	engine := &Engine{}
	merged := engine.Bundle(
		&model.StatsBundle{Weapons: []*model.WeaponStat{oldW}},
		&model.StatsBundle{Weapons: []*model.WeaponStat{newW}},
	)

	require.Len(t, merged.Weapons, 1)
	wu := merged.Weapons[0].Seasons[0].Weapon
	assert.Equal(t, 12, wu.Kills)
	assert.Equal(t, 12, wu.RoundsUsed)
	assert.Equal(t, 1.0, wu.AvgKillsPerRound, "averages recomputed from merged counters")
}

func TestBundle_NilSides(t *testing.T) {
	engine := &Engine{}
	b := &model.StatsBundle{}
	assert.Same(t, b, engine.Bundle(nil, b))
	assert.Same(t, b, engine.Bundle(b, nil))
}
