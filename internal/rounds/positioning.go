package rounds

import (
	"math"
	"strings"

	"valtrack/internal/model"
)

// Broad map-region classes derived from a callout's super-region label.
const (
	regionSite          = "site"
	regionMid           = "mid"
	regionAttackerSpawn = "attacker"
	regionDefenderSpawn = "defender"
	regionOther         = "other"
)

// Position-type labels. Assigned from (side, region class); see positionType.
const (
	RoleAggressive = "Aggressive"
	RoleControl    = "Control"
	RoleAnchor     = "Anchor"
	RoleLurk       = "Lurk"
	RoleRetake     = "Retake"
	RoleDefault    = "Default"
)

// positioning classifies the player's round position by the nearest callout.
// Missing location data or an empty callout table yields the sentinels.
func (p *Processor) positioning(round *model.RoundRecord, kills []model.KillEvent, side model.Side) model.PositioningStats {
	pos := model.PositioningStats{
		Site:         model.SiteUnknown,
		PositionType: model.PositionBalanced,
		Side:         side,
	}

	loc, ok := p.playerLocation(kills)
	if !ok || len(p.Callouts) == 0 {
		return pos
	}

	nearest := nearestCallout(p.Callouts, loc)
	pos.Site = nearest.SuperRegion
	pos.PositionType = positionType(side, regionClass(nearest.SuperRegion))
	return pos
}

// playerLocation returns the first recorded position of the tracked player in
// the round's kill events, in chronological order: the victim location when
// the player died, or their entry in a kill's player-location snapshot.
func (p *Processor) playerLocation(kills []model.KillEvent) (model.Coordinate, bool) {
	for _, k := range kills {
		if k.VictimID == p.PlayerID {
			return k.VictimLocation, true
		}
		for _, pl := range k.PlayerLocations {
			if pl.PUUID == p.PlayerID {
				return pl.Location, true
			}
		}
	}
	return model.Coordinate{}, false
}

// nearestCallout returns the callout geometrically closest to loc.
func nearestCallout(callouts []model.Callout, loc model.Coordinate) model.Callout {
	best := callouts[0]
	bestDist := math.Inf(1)
	for _, c := range callouts {
		dx := c.Location.X - loc.X
		dy := c.Location.Y - loc.Y
		if d := dx*dx + dy*dy; d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// regionClass buckets a super-region label into a broad class.
func regionClass(superRegion string) string {
	s := strings.ToLower(superRegion)
	switch {
	case s == "a" || s == "b" || s == "c":
		return regionSite
	case strings.Contains(s, "mid"):
		return regionMid
	case strings.Contains(s, "attacker"):
		return regionAttackerSpawn
	case strings.Contains(s, "defender"):
		return regionDefenderSpawn
	default:
		return regionOther
	}
}

// positionType is the fixed (side, region) → role lookup.
func positionType(side model.Side, region string) string {
	switch side {
	case model.SideAttack:
		switch region {
		case regionSite:
			return RoleAggressive
		case regionMid:
			return RoleControl
		case regionDefenderSpawn:
			return RoleLurk
		case regionAttackerSpawn:
			return RoleDefault
		}
	case model.SideDefense:
		switch region {
		case regionSite:
			return RoleAnchor
		case regionMid:
			return RoleControl
		case regionAttackerSpawn:
			return RoleAggressive
		case regionDefenderSpawn:
			return RoleRetake
		}
	}
	return model.PositionBalanced
}
