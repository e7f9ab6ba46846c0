package aggregator

import (
	"errors"
	"fmt"

	"valtrack/internal/model"
)

// Match-level validation failures. All of them are non-fatal to a generation
// pass: the offending match is logged and skipped.
var (
	ErrMalformedMatch = errors.New("malformed match record")
	ErrPlayerNotFound = errors.New("tracked player not in match")
	ErrTeamNotFound   = errors.New("player team not in match")
)

// MatchContext resolves the tracked player and the two teams of a match.
type MatchContext struct {
	Player     *model.MatchPlayer
	PlayerTeam *model.TeamRecord
	EnemyTeam  *model.TeamRecord
	TeamOf     map[string]string // puuid → team id, full match roster
}

// ExtractMatchContext validates a raw match record and resolves the tracked
// player, their team, and the opposing team. It has no side effects.
func ExtractMatchContext(m *model.MatchRecord, playerID string) (*MatchContext, error) {
	if m == nil || m.MatchID == "" || len(m.Players) == 0 || len(m.Teams) == 0 {
		return nil, ErrMalformedMatch
	}

	var player *model.MatchPlayer
	teamOf := make(map[string]string, len(m.Players))
	for i := range m.Players {
		p := &m.Players[i]
		teamOf[p.PUUID] = p.TeamID
		if p.PUUID == playerID {
			player = p
		}
	}
	if player == nil {
		return nil, fmt.Errorf("%w: %s in match %s", ErrPlayerNotFound, playerID, m.MatchID)
	}

	var playerTeam, enemyTeam *model.TeamRecord
	for i := range m.Teams {
		t := &m.Teams[i]
		if t.TeamID == player.TeamID {
			playerTeam = t
		} else {
			enemyTeam = t
		}
	}
	if playerTeam == nil {
		return nil, fmt.Errorf("%w: team %q in match %s", ErrTeamNotFound, player.TeamID, m.MatchID)
	}

	return &MatchContext{
		Player:     player,
		PlayerTeam: playerTeam,
		EnemyTeam:  enemyTeam,
		TeamOf:     teamOf,
	}, nil
}
