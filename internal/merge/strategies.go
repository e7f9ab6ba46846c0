package merge

import "valtrack/internal/model"

// AgentStrategy merges agent entities by composite id, unioning season lists.
func AgentStrategy() Strategy[*model.AgentStat] {
	return Strategy[*model.AgentStat]{
		Name:     "agent",
		Identity: func(a *model.AgentStat) string { return a.ID },
		Combine: func(old, new *model.AgentStat) *model.AgentStat {
			new.Seasons = mergeSeasonLists(old.Seasons, new.Seasons)
			if new.Name == "" {
				new.Name = old.Name
			}
			if new.ImageURL == "" {
				new.ImageURL = old.ImageURL
			}
			return new
		},
	}
}

// MapStrategy merges map entities by composite id, unioning season lists.
func MapStrategy() Strategy[*model.MapStat] {
	return Strategy[*model.MapStat]{
		Name:     "map",
		Identity: func(m *model.MapStat) string { return m.ID },
		Combine: func(old, new *model.MapStat) *model.MapStat {
			new.Seasons = mergeSeasonLists(old.Seasons, new.Seasons)
			if new.Name == "" {
				new.Name = old.Name
			}
			if new.ImageURL == "" {
				new.ImageURL = old.ImageURL
			}
			return new
		},
	}
}

// WeaponStrategy merges weapon entities by composite id, unioning season lists.
func WeaponStrategy() Strategy[*model.WeaponStat] {
	return Strategy[*model.WeaponStat]{
		Name:     "weapon",
		Identity: func(w *model.WeaponStat) string { return w.ID },
		Combine: func(old, new *model.WeaponStat) *model.WeaponStat {
			new.Seasons = mergeSeasonLists(old.Seasons, new.Seasons)
			if new.Name == "" {
				new.Name = old.Name
			}
			if new.ImageURL == "" {
				new.ImageURL = old.ImageURL
			}
			return new
		},
	}
}

// SeasonStrategy merges flat season entities: the newer record replaces the
// older one for the same identity.
func SeasonStrategy() Strategy[*model.SeasonStat] {
	return Strategy[*model.SeasonStat]{
		Name:     "season",
		Identity: func(s *model.SeasonStat) string { return s.ID },
		Combine:  func(_, new *model.SeasonStat) *model.SeasonStat { return new },
	}
}

// MatchStrategy merges match entities: the newer record replaces the older.
func MatchStrategy() Strategy[*model.MatchStat] {
	return Strategy[*model.MatchStat]{
		Name:     "match",
		Identity: func(m *model.MatchStat) string { return m.ID },
		Combine:  func(_, new *model.MatchStat) *model.MatchStat { return new },
	}
}

// mergeSeasonLists unions two season lists by season id. Seasons present in
// both have every counter summed, heatmap lists concatenated (old first) and
// derived averages recomputed; seasons present on one side only pass through.
func mergeSeasonLists(old, new []*model.SeasonPerformance) []*model.SeasonPerformance {
	oldByID := make(map[string]*model.SeasonPerformance, len(old))
	for _, sp := range old {
		oldByID[sp.SeasonID] = sp
	}

	merged := make([]*model.SeasonPerformance, 0, len(new))
	seen := make(map[string]bool, len(new))
	for _, sp := range new {
		seen[sp.SeasonID] = true
		if prev, ok := oldByID[sp.SeasonID]; ok {
			merged = append(merged, mergeSeason(prev, sp))
		} else {
			merged = append(merged, sp)
		}
	}
	for _, sp := range old {
		if !seen[sp.SeasonID] {
			merged = append(merged, sp)
		}
	}
	return merged
}

// mergeSeason sums old into new in place and returns new.
func mergeSeason(old, new *model.SeasonPerformance) *model.SeasonPerformance {
	addTotals(&new.Totals, &old.Totals)
	new.Attack = mergeSide(old.Attack, new.Attack)
	new.Defense = mergeSide(old.Defense, new.Defense)

	if old.MapResults != nil {
		if new.MapResults == nil {
			new.MapResults = make(map[string]*model.WinLoss, len(old.MapResults))
		}
		for mapID, wl := range old.MapResults {
			if cur, ok := new.MapResults[mapID]; ok {
				cur.Wins += wl.Wins
				cur.Losses += wl.Losses
			} else {
				new.MapResults[mapID] = wl
			}
		}
	}

	new.Ability = mergeAbility(old.Ability, new.Ability)
	new.Weapon = mergeWeapon(old.Weapon, new.Weapon)

	new.KillLocations = append(append([]model.Coordinate{}, old.KillLocations...), new.KillLocations...)
	new.DeathLocations = append(append([]model.Coordinate{}, old.DeathLocations...), new.DeathLocations...)
	return new
}

// addTotals sums src into dst. Every counter is strictly additive except
// HighestRank, which takes the maximum.
func addTotals(dst, src *model.SeasonTotals) {
	dst.Kills += src.Kills
	dst.Deaths += src.Deaths
	dst.Assists += src.Assists
	dst.Score += src.Score
	dst.RoundsWon += src.RoundsWon
	dst.RoundsLost += src.RoundsLost
	dst.RoundsPlayed += src.RoundsPlayed
	dst.MatchesWon += src.MatchesWon
	dst.MatchesLost += src.MatchesLost
	dst.MatchesPlayed += src.MatchesPlayed
	dst.Plants += src.Plants
	dst.Defuses += src.Defuses
	dst.FirstKills += src.FirstKills
	dst.Aces += src.Aces
	dst.PlaytimeMillis += src.PlaytimeMillis
	if src.HighestRank > dst.HighestRank {
		dst.HighestRank = src.HighestRank
	}
}

func mergeSide(old, new *model.SideStats) *model.SideStats {
	if old == nil {
		return new
	}
	if new == nil {
		return old
	}
	new.Kills += old.Kills
	new.Deaths += old.Deaths
	new.RoundsWon += old.RoundsWon
	new.RoundsLost += old.RoundsLost
	for i := range new.ClutchAttempts {
		new.ClutchAttempts[i] += old.ClutchAttempts[i]
		new.ClutchWins[i] += old.ClutchWins[i]
	}
	return new
}

func mergeAbility(old, new *model.AbilityImpact) *model.AbilityImpact {
	if old == nil {
		return new
	}
	if new == nil {
		return old
	}
	new.GrenadeCasts += old.GrenadeCasts
	new.BasicCasts += old.BasicCasts
	new.SignatureCasts += old.SignatureCasts
	new.UltimateCasts += old.UltimateCasts
	new.GrenadeKills += old.GrenadeKills
	new.BasicKills += old.BasicKills
	new.SignatureKills += old.SignatureKills
	new.UltimateKills += old.UltimateKills
	new.GrenadeDamage += old.GrenadeDamage
	new.BasicDamage += old.BasicDamage
	new.SignatureDamage += old.SignatureDamage
	new.UltimateDamage += old.UltimateDamage
	return new
}

func mergeWeapon(old, new *model.WeaponUsage) *model.WeaponUsage {
	if old == nil {
		return new
	}
	if new == nil {
		return old
	}
	new.Kills += old.Kills
	new.Damage += old.Damage
	new.Headshots += old.Headshots
	new.Bodyshots += old.Bodyshots
	new.Legshots += old.Legshots
	new.RoundsUsed += old.RoundsUsed
	new.Recompute()
	return new
}
