package rounds

import "math"

// Impact score component weights. The four sub-scores are each 0-100 and are
// blended with these weights (normalized to 100).
const (
	WeightCombat   = 40.0
	WeightEconomy  = 20.0
	WeightPosition = 25.0
	WeightUtility  = 15.0
)

// Combat sub-score tuning.
const (
	killContribution = 18.0 // per kill, capped at killCap kills
	killCap          = 4
	deathPenalty     = 20.0
	assistBonus      = 6.0
	headshotFactor   = 0.25 // per headshot percentage point
)

// Economy sub-score tuning.
const (
	underEquippedRatio   = 0.7
	underEquippedPenalty = 20.0
	overEquippedRatio    = 1.2
	overEquippedBonus    = 10.0
	damagePerCreditScale = 400.0
	damagePerCreditCap   = 40.0
	minCreditBasis       = 100
)

// Position sub-score tuning.
const (
	firstContactWinBonus   = 25.0
	firstContactLossMalus  = 20.0
)

// Utility sub-score tuning.
const (
	utilityUsageSlots = 4
	utilityUsageScale = 60.0
	utilityDamageCap  = 40.0
)

// Outcome multipliers and the flawless bonus.
const (
	wonRoundFactor     = 1.15
	lostButFoughtKills = 2
	lostButFoughtFactor = 1.05
	flawlessKills      = 3
	flawlessBonus      = 10.0
)

// ImpactScore blends the four sub-scores with fixed weights, applies the
// round-outcome factor and the flawless bonus, and clamps to [0, 100].
func ImpactScore(f Facts) float64 {
	score := (combatScore(f)*WeightCombat +
		economyScore(f)*WeightEconomy +
		positionScore(f)*WeightPosition +
		utilityScore(f)*WeightUtility) /
		(WeightCombat + WeightEconomy + WeightPosition + WeightUtility)

	if f.Won {
		score *= wonRoundFactor
	} else if f.Combat.Kills >= lostButFoughtKills {
		score *= lostButFoughtFactor
	}
	if f.Combat.Kills >= flawlessKills && f.Combat.Deaths == 0 {
		score += flawlessBonus
	}
	return clamp(score, 0, 100)
}

func combatScore(f Facts) float64 {
	kills := f.Combat.Kills
	if kills > killCap {
		kills = killCap
	}
	score := float64(kills)*killContribution -
		float64(f.Combat.Deaths)*deathPenalty +
		float64(f.Combat.Assists)*assistBonus +
		f.Combat.HeadshotPct*headshotFactor
	return clamp(score, 0, 100)
}

func economyScore(f Facts) float64 {
	score := 50.0
	if f.Economy.EnemyLoadoutValue > 0 {
		ratio := float64(f.Economy.LoadoutValue) / float64(f.Economy.EnemyLoadoutValue)
		if ratio < underEquippedRatio {
			score -= underEquippedPenalty
		} else if ratio > overEquippedRatio {
			score += overEquippedBonus
		}
	}
	credits := f.Economy.CreditsSpent
	if credits < minCreditBasis {
		credits = minCreditBasis
	}
	dpc := float64(f.Combat.DamageDealt) / float64(credits)
	score += math.Min(dpc*damagePerCreditScale, damagePerCreditCap)
	return clamp(score, 0, 100)
}

func positionScore(f Facts) float64 {
	score := 50.0
	kills := float64(f.Combat.Kills)
	deaths := float64(f.Combat.Deaths)

	if f.Combat.FirstContact {
		if f.Combat.Kills > 0 {
			score += firstContactWinBonus
		} else if f.Combat.Deaths > 0 {
			score -= firstContactLossMalus
		}
	}

	switch f.Positioning.PositionType {
	case RoleAggressive, RoleDefault:
		score += kills*8 - deaths*10
	case RoleAnchor, RoleRetake:
		score -= deaths * 12
		if f.Combat.Deaths == 0 {
			score += 10
		}
	case RoleLurk:
		score += kills*10 - deaths*8
	case RoleControl:
		score += kills*6 - deaths*8
	}
	return clamp(score, 0, 100)
}

func utilityScore(f Facts) float64 {
	used := f.Utility.AbilitiesUsed
	if used > utilityUsageSlots {
		used = utilityUsageSlots
	}
	score := float64(used) / utilityUsageSlots * utilityUsageScale

	expected := float64(f.Utility.AbilitiesUsed) * abilityKillDamage
	if expected > 0 {
		ratio := math.Min(f.Utility.UtilityDamage/expected, 1)
		score += ratio * utilityDamageCap
	}
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
