package rounds

import (
	"fmt"

	"valtrack/internal/model"
)

// detectClutch reports the clutch situation for the tracked player in this
// round, or nil. A clutch exists when every teammate appears as a victim in
// the round's kill list while the player does not, and at least one opponent
// was not eliminated by the player's teammates. The bucket size n counts the
// opponents left unaccounted for by teammates; kills the player made during
// the clutch still count toward n.
func (p *Processor) detectClutch(round *model.RoundRecord, kills []model.KillEvent, roundIndex int) *model.ClutchEvent {
	dead := make(map[string]bool, len(kills))
	for _, k := range kills {
		dead[k.VictimID] = true
	}
	if dead[p.PlayerID] {
		return nil
	}

	teammates := 0
	enemies := 0
	for puuid, team := range p.TeamOf {
		if puuid == p.PlayerID {
			continue
		}
		if team == p.PlayerTeam {
			teammates++
			if !dead[puuid] {
				return nil // a teammate survived; not a clutch
			}
		} else {
			enemies++
		}
	}
	if teammates == 0 {
		return nil
	}

	killedByTeammates := 0
	for _, k := range kills {
		if k.KillerID != p.PlayerID && p.TeamOf[k.KillerID] == p.PlayerTeam && p.TeamOf[k.VictimID] != p.PlayerTeam {
			killedByTeammates++
		}
	}

	n := enemies - killedByTeammates
	if n < 1 {
		return nil
	}
	if n > 5 {
		n = 5
	}

	return &model.ClutchEvent{
		RoundNumber: round.RoundNum,
		Opponents:   n,
		Situation:   fmt.Sprintf("1v%d", n),
		Won:         round.WinningTeam == p.PlayerTeam,
	}
}
