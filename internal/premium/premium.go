// Package premium ranks aggregated entities with fixed per-type rubrics and
// flags the top subset as premium. Scoring only mutates the Premium flag of
// its inputs; it never reorders the caller's slices.
package premium

import (
	"math"
	"sort"

	"valtrack/internal/model"
)

// Shared rubric thresholds.
const (
	activeSeasonFactor = 1.5

	clutchScoreCap   = 20.0
	goodMapBonus     = 3.0
	goodMapBonusCap  = 15.0

	// Absolute premium thresholds for individual matches.
	rankedMatchThreshold   = 75.0
	unrankedMatchThreshold = 85.0
	topMatchFraction       = 0.2
)

// Scorer flags premium entities. ActiveSeason weights the current season's
// contribution up when scoring season-keyed entities.
type Scorer struct {
	ActiveSeason string
}

// Flag scores and flags every entity list in the bundle.
func (s *Scorer) Flag(b *model.StatsBundle) {
	flagTopThird(b.Agents, s.agentScore, func(a *model.AgentStat, p bool) { a.Premium = p })
	flagTopThird(b.Maps, s.mapScore, func(m *model.MapStat, p bool) { m.Premium = p })
	flagTopThird(b.Weapons, s.weaponScore, func(w *model.WeaponStat, p bool) { w.Premium = p })
	flagTopThird(b.Seasons, s.seasonScore, func(st *model.SeasonStat, p bool) { st.Premium = p })
	s.flagMatches(b.Matches)
}

// flagTopThird marks the top ceil(n/3) items (minimum 1) premium and resets
// the flag on the rest.
func flagTopThird[T any](items []T, score func(T) float64, set func(T, bool)) {
	if len(items) == 0 {
		return
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	scores := make([]float64, len(items))
	for i, item := range items {
		scores[i] = score(item)
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	cut := int(math.Ceil(float64(len(items)) / 3))
	if cut < 1 {
		cut = 1
	}
	for rank, idx := range order {
		set(items[idx], rank < cut)
	}
}

// flagMatches uses an absolute impact threshold (ranked or unranked) OR
// membership in the top 20% by score, whichever admits more matches.
func (s *Scorer) flagMatches(matches []*model.MatchStat) {
	if len(matches) == 0 {
		return
	}
	scores := make([]float64, len(matches))
	order := make([]int, len(matches))
	for i, m := range matches {
		scores[i] = s.matchScore(m)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	topCut := int(math.Ceil(float64(len(matches)) * topMatchFraction))
	if topCut < 1 {
		topCut = 1
	}
	topSet := make(map[int]bool, topCut)
	for rank := 0; rank < topCut; rank++ {
		topSet[order[rank]] = true
	}

	for i, m := range matches {
		threshold := unrankedMatchThreshold
		if m.Ranked {
			threshold = rankedMatchThreshold
		}
		m.Premium = scores[i] >= threshold || topSet[i]
	}
}

func (s *Scorer) agentScore(a *model.AgentStat) float64 {
	var score float64
	for _, sp := range a.Seasons {
		score += s.seasonWeight(sp.SeasonID) * agentSeasonScore(sp)
	}
	return score
}

func agentSeasonScore(sp *model.SeasonPerformance) float64 {
	score := kdScore(sp.Totals.KDRatio()) + winRateScore(sp.Totals.WinRate())
	score += math.Min(clutchScore(sp.Attack)+clutchScore(sp.Defense), clutchScoreCap)

	if ab := sp.Ability; ab != nil {
		if ab.KillTotal() >= 10 {
			score += 10
		} else if ab.KillTotal() >= 5 {
			score += 5
		}
		if ab.DamageTotal() >= 500 {
			score += 5
		}
	}

	goodMaps := 0
	for _, wl := range sp.MapResults {
		if wl.Wins > wl.Losses {
			goodMaps++
		}
	}
	score += math.Min(float64(goodMaps)*goodMapBonus, goodMapBonusCap)
	return score
}

func (s *Scorer) mapScore(m *model.MapStat) float64 {
	var score float64
	for _, sp := range m.Seasons {
		seasonScore := kdScore(sp.Totals.KDRatio()) + winRateScore(sp.Totals.WinRate())
		seasonScore += math.Min(clutchScore(sp.Attack)+clutchScore(sp.Defense), clutchScoreCap)
		// Reward maps played well on both halves.
		if sideWinRate(sp.Attack) >= 50 && sideWinRate(sp.Defense) >= 50 {
			seasonScore += 10
		}
		score += s.seasonWeight(sp.SeasonID) * seasonScore
	}
	return score
}

func (s *Scorer) weaponScore(w *model.WeaponStat) float64 {
	var score float64
	for _, sp := range w.Seasons {
		u := sp.Weapon
		if u == nil {
			continue
		}
		var seasonScore float64
		switch {
		case u.Kills >= 100:
			seasonScore += 25
		case u.Kills >= 50:
			seasonScore += 15
		case u.Kills >= 20:
			seasonScore += 8
		}
		if u.AvgKillsPerRound >= 1.0 {
			seasonScore += 15
		} else if u.AvgKillsPerRound >= 0.7 {
			seasonScore += 8
		}
		hits := u.Headshots + u.Bodyshots + u.Legshots
		if hits > 0 && float64(u.Headshots)/float64(hits) >= 0.25 {
			seasonScore += 10
		}
		score += s.seasonWeight(sp.SeasonID) * seasonScore
	}
	return score
}

func (s *Scorer) seasonScore(st *model.SeasonStat) float64 {
	score := kdScore(st.Totals.KDRatio()) + winRateScore(st.Totals.WinRate())
	if st.Totals.MatchesPlayed >= 20 {
		score += 10
	} else if st.Totals.MatchesPlayed >= 10 {
		score += 5
	}
	score += math.Min(float64(st.Totals.Aces)*4, 12)
	return s.seasonWeight(st.SeasonID) * score
}

func (s *Scorer) matchScore(m *model.MatchStat) float64 {
	score := m.ImpactScore
	kd := m.KDRatio()
	if kd >= 2.0 {
		score += 10
	} else if kd >= 1.5 {
		score += 5
	}
	for _, c := range m.Clutches {
		if c.Won {
			score += float64(c.Opponents) * 2
		}
	}
	if m.Won {
		score += 5
	}
	return score
}

func (s *Scorer) seasonWeight(seasonID string) float64 {
	if s.ActiveSeason != "" && seasonID == s.ActiveSeason {
		return activeSeasonFactor
	}
	return 1.0
}

func kdScore(kd float64) float64 {
	switch {
	case kd >= 1.5:
		return 25
	case kd >= 1.2:
		return 15
	case kd >= 1.0:
		return 8
	default:
		return 0
	}
}

func winRateScore(wr float64) float64 {
	switch {
	case wr >= 60:
		return 20
	case wr >= 50:
		return 10
	default:
		return 0
	}
}

// clutchScore weights clutch wins by how outnumbered the player was.
func clutchScore(side *model.SideStats) float64 {
	if side == nil {
		return 0
	}
	var score float64
	for i, wins := range side.ClutchWins {
		score += float64(wins) * float64(i+1) * 2
	}
	return score
}

func sideWinRate(side *model.SideStats) float64 {
	if side == nil {
		return 0
	}
	played := side.RoundsWon + side.RoundsLost
	if played == 0 {
		return 0
	}
	return float64(side.RoundsWon) / float64(played) * 100
}
