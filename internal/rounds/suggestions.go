package rounds

// Suggestion thresholds.
const (
	lowHeadshotPct     = 15.0
	lowLoadoutRatio    = 0.7
	lowUtilityUsage    = 0.5
	maxSuggestions     = 3
)

// Suggestions returns a short ordered list of improvement tips for the round,
// chosen from a fixed rule set. Rules are evaluated in priority order and the
// list is capped at maxSuggestions.
func Suggestions(f Facts) []string {
	var out []string
	add := func(s string) {
		if len(out) < maxSuggestions {
			out = append(out, s)
		}
	}

	if f.Combat.Kills == 0 && f.Combat.Deaths > 0 {
		add("Died without a kill: hold crosshair at head height and pre-aim common angles before peeking.")
	}
	if f.Combat.HeadshotPct > 0 && f.Combat.HeadshotPct < lowHeadshotPct {
		add("Low headshot rate: slow down your spray and burst at the head instead of holding the trigger.")
	}
	if f.Economy.EnemyLoadoutValue > 0 &&
		float64(f.Economy.LoadoutValue) < lowLoadoutRatio*float64(f.Economy.EnemyLoadoutValue) {
		add("You were outgunned: coordinate buys with your team instead of force-buying into full loadouts.")
	}
	if f.Combat.FirstContact && f.Combat.Deaths > 0 && f.Combat.Kills == 0 {
		add("Lost the opening duel: take first contact with a teammate close enough to trade.")
	}

	switch f.Positioning.PositionType {
	case RoleAggressive:
		if f.Combat.Deaths > 0 && !f.Combat.TradedKill {
			add("Aggressive position died untraded: keep a teammate within trade range when taking space.")
		}
	case RoleAnchor:
		if f.Combat.Deaths > 0 {
			add("Anchor died on site: play further back and use utility to delay instead of dry-peeking.")
		}
	case RoleLurk:
		if f.Combat.Kills == 0 {
			add("Lurk found no impact: time your flank with your team's contact instead of free-roaming.")
		}
	}

	usage := float64(f.Utility.AbilitiesUsed) / utilityUsageSlots
	if usage < lowUtilityUsage {
		add("Under half your utility used: spend abilities to take or deny space before the round ends.")
	}
	return out
}
