package henrikdev

import (
	"encoding/json"
	"fmt"
	"time"

	"valtrack/internal/model"
)

// ParseMatches decodes an exported v3 match payload. It accepts either the
// full API envelope ({"data": [...]}) or a bare match array, so files saved
// straight from the API or hand-trimmed fixtures both load.
func ParseMatches(data []byte) ([]model.MatchRecord, error) {
	var resp matchesResponse
	if err := json.Unmarshal(data, &resp); err != nil || len(resp.Data) == 0 {
		var bare []wireMatch
		if errBare := json.Unmarshal(data, &bare); errBare != nil {
			if err == nil {
				// Valid envelope, just no matches in it.
				return nil, nil
			}
			return nil, fmt.Errorf("decode match payload: %w", err)
		}
		resp.Data = bare
	}

	out := make([]model.MatchRecord, 0, len(resp.Data))
	for i := range resp.Data {
		out = append(out, mapMatch(&resp.Data[i]))
	}
	return out, nil
}

// ---- Wire format (v3 stored-match payload, fields we consume) ----

type matchesResponse struct {
	Data []wireMatch `json:"data"`
}

type wireMatch struct {
	Metadata struct {
		MatchID    string `json:"matchid"`
		MapID      string `json:"map_id"`
		Mode       string `json:"mode"`
		SeasonID   string `json:"season_id"`
		GameLength int64  `json:"game_length"` // milliseconds
		GameStart  int64  `json:"game_start"`  // unix seconds
	} `json:"metadata"`
	Players struct {
		AllPlayers []wirePlayer `json:"all_players"`
	} `json:"players"`
	Teams struct {
		Red  wireTeam `json:"red"`
		Blue wireTeam `json:"blue"`
	} `json:"teams"`
	Rounds []wireRound `json:"rounds"`
}

type wirePlayer struct {
	PUUID       string `json:"puuid"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	Team        string `json:"team"`
	CharacterID string `json:"character_id"`
	CurrentTier int    `json:"currenttier"`
	Stats       struct {
		Kills     int `json:"kills"`
		Deaths    int `json:"deaths"`
		Assists   int `json:"assists"`
		Score     int `json:"score"`
		Headshots int `json:"headshots"`
		Bodyshots int `json:"bodyshots"`
		Legshots  int `json:"legshots"`
	} `json:"stats"`
	AbilityCasts struct {
		CCast int `json:"c_cast"`
		QCast int `json:"q_cast"`
		ECast int `json:"e_cast"`
		XCast int `json:"x_cast"`
	} `json:"ability_casts"`
	DamageMade     int `json:"damage_made"`
	DamageReceived int `json:"damage_received"`
}

type wireTeam struct {
	HasWon     bool `json:"has_won"`
	RoundsWon  int  `json:"rounds_won"`
	RoundsLost int  `json:"rounds_lost"`
}

type wireRound struct {
	WinningTeam string `json:"winning_team"`
	BombPlanted bool   `json:"bomb_planted"`
	BombDefused bool   `json:"bomb_defused"`
	PlantEvents struct {
		PlantedBy *struct {
			PUUID string `json:"puuid"`
		} `json:"planted_by"`
	} `json:"plant_events"`
	DefuseEvents struct {
		DefusedBy *struct {
			PUUID string `json:"puuid"`
		} `json:"defused_by"`
	} `json:"defuse_events"`
	PlayerStats []wirePlayerRound `json:"player_stats"`
}

type wirePlayerRound struct {
	PlayerPUUID  string `json:"player_puuid"`
	Score        int    `json:"score"`
	AbilityCasts struct {
		CCasts int `json:"c_casts"`
		QCasts int `json:"q_casts"`
		ECasts int `json:"e_casts"`
		XCasts int `json:"x_casts"`
	} `json:"ability_casts"`
	DamageEvents []struct {
		ReceiverPUUID string `json:"receiver_puuid"`
		Damage        int    `json:"damage"`
		Headshots     int    `json:"headshots"`
		Bodyshots     int    `json:"bodyshots"`
		Legshots      int    `json:"legshots"`
	} `json:"damage_events"`
	KillEvents []struct {
		KillTimeInRound int    `json:"kill_time_in_round"` // milliseconds
		KillerPUUID     string `json:"killer_puuid"`
		VictimPUUID     string `json:"victim_puuid"`
		DamageType      string `json:"damage_weapon_type"`
		DamageItem      string `json:"damage_weapon_id"`
		VictimLocation  struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"victim_death_location"`
		Assistants []struct {
			AssistantPUUID string `json:"assistant_puuid"`
		} `json:"assistants"`
		PlayerLocations []struct {
			PlayerPUUID string  `json:"player_puuid"`
			ViewRadians float64 `json:"view_radians"`
			Location    struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"location"`
		} `json:"player_locations_on_kill"`
	} `json:"kill_events"`
	Economy struct {
		LoadoutValue int `json:"loadout_value"`
		Remaining    int `json:"remaining"`
		Spent        int `json:"spent"`
		Weapon       struct {
			ID string `json:"id"`
		} `json:"weapon"`
		Armor struct {
			ID string `json:"id"`
		} `json:"armor"`
	} `json:"economy"`
}

// mapMatch converts one wire match to the pipeline's MatchRecord.
func mapMatch(w *wireMatch) model.MatchRecord {
	m := model.MatchRecord{
		MatchID:          w.Metadata.MatchID,
		MapID:            w.Metadata.MapID,
		SeasonID:         w.Metadata.SeasonID,
		Mode:             w.Metadata.Mode,
		Ranked:           w.Metadata.Mode == "Competitive",
		GameLengthMillis: w.Metadata.GameLength,
		StartedAt:        time.Unix(w.Metadata.GameStart, 0).UTC(),
	}

	for _, p := range w.Players.AllPlayers {
		m.Players = append(m.Players, model.MatchPlayer{
			PUUID:       p.PUUID,
			Name:        p.Name,
			Tag:         p.Tag,
			TeamID:      p.Team,
			AgentID:     p.CharacterID,
			Rank:        p.CurrentTier,
			Kills:       p.Stats.Kills,
			Deaths:      p.Stats.Deaths,
			Assists:     p.Stats.Assists,
			Score:       p.Stats.Score,
			Headshots:   p.Stats.Headshots,
			Bodyshots:   p.Stats.Bodyshots,
			Legshots:    p.Stats.Legshots,
			DamageDealt: p.DamageMade,
			DamageTaken: p.DamageReceived,
			AbilityCasts: model.AbilityCasts{
				Grenade:  p.AbilityCasts.CCast,
				Ability1: p.AbilityCasts.QCast,
				Ability2: p.AbilityCasts.ECast,
				Ultimate: p.AbilityCasts.XCast,
			},
		})
	}

	m.Teams = []model.TeamRecord{
		{
			TeamID:       model.TeamRed,
			Won:          w.Teams.Red.HasWon,
			RoundsWon:    w.Teams.Red.RoundsWon,
			RoundsPlayed: w.Teams.Red.RoundsWon + w.Teams.Red.RoundsLost,
		},
		{
			TeamID:       model.TeamBlue,
			Won:          w.Teams.Blue.HasWon,
			RoundsWon:    w.Teams.Blue.RoundsWon,
			RoundsPlayed: w.Teams.Blue.RoundsWon + w.Teams.Blue.RoundsLost,
		},
	}

	for i, wr := range w.Rounds {
		round := model.RoundRecord{
			RoundNum:    i,
			WinningTeam: wr.WinningTeam,
			BombPlanted: wr.BombPlanted,
			BombDefused: wr.BombDefused,
		}
		if wr.PlantEvents.PlantedBy != nil {
			round.PlanterID = wr.PlantEvents.PlantedBy.PUUID
		}
		if wr.DefuseEvents.DefusedBy != nil {
			round.DefuserID = wr.DefuseEvents.DefusedBy.PUUID
		}
		for _, ps := range wr.PlayerStats {
			round.PlayerStats = append(round.PlayerStats, mapPlayerRound(&ps))
		}
		m.Rounds = append(m.Rounds, round)
	}
	return m
}

func mapPlayerRound(ps *wirePlayerRound) model.PlayerRoundStats {
	out := model.PlayerRoundStats{
		PUUID: ps.PlayerPUUID,
		Score: ps.Score,
		Economy: model.EconomySnapshot{
			WeaponID:     ps.Economy.Weapon.ID,
			ArmorID:      ps.Economy.Armor.ID,
			LoadoutValue: ps.Economy.LoadoutValue,
			Spent:        ps.Economy.Spent,
			Remaining:    ps.Economy.Remaining,
		},
		AbilityCasts: model.AbilityCasts{
			Grenade:  ps.AbilityCasts.CCasts,
			Ability1: ps.AbilityCasts.QCasts,
			Ability2: ps.AbilityCasts.ECasts,
			Ultimate: ps.AbilityCasts.XCasts,
		},
	}

	for _, d := range ps.DamageEvents {
		out.Damage = append(out.Damage, model.DamageEvent{
			ReceiverID: d.ReceiverPUUID,
			Damage:     d.Damage,
			Headshots:  d.Headshots,
			Bodyshots:  d.Bodyshots,
			Legshots:   d.Legshots,
		})
	}

	for _, k := range ps.KillEvents {
		kill := model.KillEvent{
			TimeSinceRoundStartMillis: k.KillTimeInRound,
			KillerID:                  k.KillerPUUID,
			VictimID:                  k.VictimPUUID,
			VictimLocation:            model.Coordinate{X: k.VictimLocation.X, Y: k.VictimLocation.Y},
			FinishingDamage: model.FinishingDamage{
				DamageType: k.DamageType,
				DamageItem: k.DamageItem,
			},
		}
		for _, a := range k.Assistants {
			kill.Assistants = append(kill.Assistants, a.AssistantPUUID)
		}
		for _, pl := range k.PlayerLocations {
			kill.PlayerLocations = append(kill.PlayerLocations, model.PlayerLocation{
				PUUID:       pl.PlayerPUUID,
				Location:    model.Coordinate{X: pl.Location.X, Y: pl.Location.Y},
				ViewRadians: pl.ViewRadians,
			})
		}
		out.Kills = append(out.Kills, kill)
	}
	return out
}
