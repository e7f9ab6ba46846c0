package aggregator

import "valtrack/internal/model"

// applyWeapon folds one match into the weapon accumulator. Every weapon the
// player bought or killed with in a round counts as "used" that round; kills
// attribute by finishing-damage item, while damage and hit-location splits
// attribute to the round's bought weapon (the telemetry does not tie damage
// entries to a weapon).
func (g *Generator) applyWeapon(weapons map[string]*model.WeaponStat, mf *matchFacts) {
	// Per-weapon per-match scratch, folded into season entries at the end.
	type usage struct {
		kills, damage                  int
		headshots, bodyshots, legshots int
		roundsUsed                     int
	}
	used := make(map[string]*usage)
	get := func(weaponID string) *usage {
		u, ok := used[weaponID]
		if !ok {
			u = &usage{}
			used[weaponID] = u
		}
		return u
	}

	for i := range mf.match.Rounds {
		r := &mf.match.Rounds[i]
		var ps *model.PlayerRoundStats
		for j := range r.PlayerStats {
			if r.PlayerStats[j].PUUID == mf.playerID {
				ps = &r.PlayerStats[j]
				break
			}
		}
		if ps == nil {
			continue
		}

		roundWeapons := make(map[string]bool)
		if ps.Economy.WeaponID != "" {
			roundWeapons[ps.Economy.WeaponID] = true
		}
		for _, k := range ps.Kills {
			if k.FinishingDamage.DamageType == "Weapon" && k.FinishingDamage.DamageItem != "" {
				roundWeapons[k.FinishingDamage.DamageItem] = true
				get(k.FinishingDamage.DamageItem).kills++
			}
		}
		for w := range roundWeapons {
			get(w).roundsUsed++
		}

		if bought := ps.Economy.WeaponID; bought != "" {
			u := get(bought)
			for _, d := range ps.Damage {
				u.damage += d.Damage
				u.headshots += d.Headshots
				u.bodyshots += d.Bodyshots
				u.legshots += d.Legshots
			}
		}
	}

	for weaponID, u := range used {
		stat, ok := weapons[weaponID]
		if !ok {
			stat = &model.WeaponStat{
				ID:       model.CompositeID(mf.playerID, weaponID),
				PlayerID: mf.playerID,
				WeaponID: weaponID,
			}
			weapons[weaponID] = stat
		}

		sp := seasonEntry(&stat.Seasons, mf.match.SeasonID)
		if sp.Weapon == nil {
			sp.Weapon = &model.WeaponUsage{}
		}
		w := sp.Weapon
		w.Kills += u.kills
		w.Damage += u.damage
		w.Headshots += u.headshots
		w.Bodyshots += u.bodyshots
		w.Legshots += u.legshots
		w.RoundsUsed += u.roundsUsed
		w.Recompute()

		sp.Totals.Kills += u.kills
		sp.Totals.RoundsPlayed += u.roundsUsed
		sp.Totals.MatchesPlayed++
		if mf.mc.PlayerTeam.Won {
			sp.Totals.MatchesWon++
		} else {
			sp.Totals.MatchesLost++
		}
	}
}
