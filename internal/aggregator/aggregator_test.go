package aggregator

import (
	"context"
	"errors"
	"testing"

	"valtrack/internal/model"
)

const (
	trackedPlayer = "puuid-p1"
	teammate      = "puuid-p2"
	enemyOne      = "puuid-e1"
	enemyTwo      = "puuid-e2"
)

// weaponKill builds a kill finished with the given weapon.
func weaponKill(at int, killer, victim, weapon string) model.KillEvent {
	return model.KillEvent{
		TimeSinceRoundStartMillis: at,
		KillerID:                  killer,
		VictimID:                  victim,
		VictimLocation:            model.Coordinate{X: float64(at), Y: float64(at)},
		FinishingDamage:           model.FinishingDamage{DamageType: "Weapon", DamageItem: weapon},
	}
}

// testMatch builds a three-round match won by Red. The tracked player:
//   - round 0: kills both enemies with the vandal (Red wins)
//   - round 1: one vandal kill, then dies (Blue wins)
//   - round 2: no buy, no kills (Red wins)
// Vandal line expected downstream: 3 kills over 2 rounds used.
func testMatch() model.MatchRecord {
	roster := []model.MatchPlayer{
		{PUUID: trackedPlayer, TeamID: model.TeamRed, AgentID: "jett", Rank: 12, Score: 4200, AbilityCasts: model.AbilityCasts{Ability1: 3, Ultimate: 1}},
		{PUUID: teammate, TeamID: model.TeamRed, AgentID: "sova"},
		{PUUID: enemyOne, TeamID: model.TeamBlue, AgentID: "omen"},
		{PUUID: enemyTwo, TeamID: model.TeamBlue, AgentID: "raze"},
	}

	withStats := func(num int, winner string, stats ...model.PlayerRoundStats) model.RoundRecord {
		r := model.RoundRecord{RoundNum: num, WinningTeam: winner}
		present := make(map[string]bool)
		for _, s := range stats {
			present[s.PUUID] = true
			r.PlayerStats = append(r.PlayerStats, s)
		}
		for _, p := range roster {
			if !present[p.PUUID] {
				r.PlayerStats = append(r.PlayerStats, model.PlayerRoundStats{PUUID: p.PUUID})
			}
		}
		return r
	}

	rounds := []model.RoundRecord{
		withStats(0, model.TeamRed, model.PlayerRoundStats{
			PUUID: trackedPlayer,
			Kills: []model.KillEvent{
				weaponKill(1000, trackedPlayer, enemyOne, "vandal"),
				weaponKill(2000, trackedPlayer, enemyTwo, "vandal"),
			},
			Damage:  []model.DamageEvent{{ReceiverID: enemyOne, Damage: 280, Headshots: 2, Bodyshots: 4}},
			Economy: model.EconomySnapshot{WeaponID: "vandal", LoadoutValue: 3900, Spent: 3900},
		}),
		withStats(1, model.TeamBlue,
			model.PlayerRoundStats{
				PUUID: trackedPlayer,
				Kills: []model.KillEvent{
					weaponKill(1500, trackedPlayer, enemyTwo, "vandal"),
				},
				Economy: model.EconomySnapshot{WeaponID: "vandal", LoadoutValue: 3900, Spent: 1000},
			},
			model.PlayerRoundStats{
				PUUID: enemyOne,
				Kills: []model.KillEvent{
					weaponKill(3000, enemyOne, trackedPlayer, "phantom"),
				},
			},
		),
		withStats(2, model.TeamRed, model.PlayerRoundStats{
			PUUID:   trackedPlayer,
			Economy: model.EconomySnapshot{},
		}),
	}

	return model.MatchRecord{
		MatchID:          "match-1",
		MapID:            "ascent",
		SeasonID:         "episode-9-act-1",
		Mode:             "Competitive",
		Ranked:           true,
		GameLengthMillis: 1_800_000,
		Players:          roster,
		Teams: []model.TeamRecord{
			{TeamID: model.TeamRed, Won: true, RoundsWon: 2, RoundsPlayed: 3},
			{TeamID: model.TeamBlue, Won: false, RoundsWon: 1, RoundsPlayed: 3},
		},
		Rounds: rounds,
	}
}

func generate(t *testing.T, matches ...model.MatchRecord) *model.StatsBundle {
	t.Helper()
	g := &Generator{}
	return g.Generate(context.Background(), trackedPlayer, matches)
}

// ---- Match context validation ----

func TestExtractMatchContext(t *testing.T) {
	m := testMatch()

	mc, err := ExtractMatchContext(&m, trackedPlayer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.Player.AgentID != "jett" {
		t.Errorf("Player.AgentID = %q, want jett", mc.Player.AgentID)
	}
	if !mc.PlayerTeam.Won || mc.EnemyTeam.Won {
		t.Error("expected Red (player team) to be the winner")
	}
	if len(mc.TeamOf) != 4 {
		t.Errorf("TeamOf has %d entries, want 4", len(mc.TeamOf))
	}
}

func TestExtractMatchContext_Errors(t *testing.T) {
	m := testMatch()

	if _, err := ExtractMatchContext(nil, trackedPlayer); !errors.Is(err, ErrMalformedMatch) {
		t.Errorf("nil match: err = %v, want ErrMalformedMatch", err)
	}

	empty := m
	empty.Players = nil
	if _, err := ExtractMatchContext(&empty, trackedPlayer); !errors.Is(err, ErrMalformedMatch) {
		t.Errorf("no players: err = %v, want ErrMalformedMatch", err)
	}

	if _, err := ExtractMatchContext(&m, "puuid-stranger"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player: err = %v, want ErrPlayerNotFound", err)
	}

	badTeam := testMatch()
	badTeam.Teams = []model.TeamRecord{{TeamID: model.TeamBlue}}
	if _, err := ExtractMatchContext(&badTeam, trackedPlayer); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("missing team: err = %v, want ErrTeamNotFound", err)
	}
}

// ---- Agent aggregation ----

func TestGenerate_AgentTotals(t *testing.T) {
	bundle := generate(t, testMatch())

	if len(bundle.Agents) != 1 {
		t.Fatalf("got %d agents, want 1", len(bundle.Agents))
	}
	a := bundle.Agents[0]
	if a.AgentID != "jett" {
		t.Errorf("AgentID = %q, want jett", a.AgentID)
	}
	if a.ID != model.CompositeID(trackedPlayer, "jett") {
		t.Errorf("ID = %q, want composite id", a.ID)
	}
	if len(a.Seasons) != 1 {
		t.Fatalf("got %d season entries, want 1", len(a.Seasons))
	}

	sp := a.Seasons[0]
	tot := sp.Totals
	if tot.Kills != 3 || tot.Deaths != 1 {
		t.Errorf("Kills/Deaths = %d/%d, want 3/1", tot.Kills, tot.Deaths)
	}
	if tot.RoundsWon != 2 || tot.RoundsLost != 1 || tot.RoundsPlayed != 3 {
		t.Errorf("rounds = %d-%d of %d, want 2-1 of 3", tot.RoundsWon, tot.RoundsLost, tot.RoundsPlayed)
	}
	if tot.MatchesPlayed != 1 || tot.MatchesWon != 1 {
		t.Errorf("matches = %d played %d won, want 1/1", tot.MatchesPlayed, tot.MatchesWon)
	}
	// "First kill" is credited for every round with at least one kill.
	if tot.FirstKills != 2 {
		t.Errorf("FirstKills = %d, want 2", tot.FirstKills)
	}
	if tot.Aces != 0 {
		t.Errorf("Aces = %d, want 0", tot.Aces)
	}
	if tot.HighestRank != 12 {
		t.Errorf("HighestRank = %d, want 12", tot.HighestRank)
	}

	// All three rounds are first-half, so everything lands on the attack side.
	if sp.Attack == nil || sp.Attack.RoundsWon != 2 || sp.Attack.RoundsLost != 1 {
		t.Errorf("Attack side = %+v, want 2-1", sp.Attack)
	}
	if sp.Defense.RoundsWon != 0 || sp.Defense.RoundsLost != 0 {
		t.Errorf("Defense side = %+v, want empty", sp.Defense)
	}

	wl := sp.MapResults["ascent"]
	if wl == nil || wl.Wins != 1 || wl.Losses != 0 {
		t.Errorf("MapResults[ascent] = %+v, want 1-0", wl)
	}

	if len(sp.KillLocations) != 3 {
		t.Errorf("KillLocations = %d points, want 3", len(sp.KillLocations))
	}
	if len(sp.DeathLocations) != 1 {
		t.Errorf("DeathLocations = %d points, want 1", len(sp.DeathLocations))
	}

	ab := sp.Ability
	if ab == nil {
		t.Fatal("expected an ability impact block")
	}
	if ab.BasicCasts != 3 || ab.UltimateCasts != 1 {
		t.Errorf("casts = basic %d ult %d, want 3/1", ab.BasicCasts, ab.UltimateCasts)
	}
}

// ---- Weapon aggregation ----

func TestGenerate_WeaponUsage(t *testing.T) {
	bundle := generate(t, testMatch())

	var vandal *model.WeaponStat
	for _, w := range bundle.Weapons {
		if w.WeaponID == "vandal" {
			vandal = w
		}
	}
	if vandal == nil {
		t.Fatalf("no vandal entry in %d weapons", len(bundle.Weapons))
	}

	wu := vandal.Seasons[0].Weapon
	if wu.Kills != 3 {
		t.Errorf("Kills = %d, want 3", wu.Kills)
	}
	if wu.RoundsUsed != 2 {
		t.Errorf("RoundsUsed = %d, want 2", wu.RoundsUsed)
	}
	if wu.AvgKillsPerRound != 1.5 {
		t.Errorf("AvgKillsPerRound = %v, want 1.5", wu.AvgKillsPerRound)
	}
	// Round-0 damage splits attribute to the bought weapon.
	if wu.Damage != 280 || wu.Headshots != 2 || wu.Bodyshots != 4 {
		t.Errorf("damage line = %d dmg %d hs %d body, want 280/2/4", wu.Damage, wu.Headshots, wu.Bodyshots)
	}

	// The enemy's phantom killed the player; it is not a weapon the player used.
	for _, w := range bundle.Weapons {
		if w.WeaponID == "phantom" {
			t.Error("phantom should not appear in the player's weapon stats")
		}
	}
}

// ---- Season and match aggregation ----

func TestGenerate_SeasonAndMatch(t *testing.T) {
	bundle := generate(t, testMatch())

	if len(bundle.Seasons) != 1 {
		t.Fatalf("got %d seasons, want 1", len(bundle.Seasons))
	}
	s := bundle.Seasons[0]
	if s.SeasonID != "episode-9-act-1" {
		t.Errorf("SeasonID = %q", s.SeasonID)
	}
	if s.Totals.Kills != 3 || s.Totals.MatchesWon != 1 {
		t.Errorf("season totals = %+v", s.Totals)
	}
	if s.Totals.PlaytimeMillis != 1_800_000 {
		t.Errorf("PlaytimeMillis = %d", s.Totals.PlaytimeMillis)
	}

	if len(bundle.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(bundle.Matches))
	}
	ms := bundle.Matches[0]
	if ms.Kills != 3 || ms.Deaths != 1 || !ms.Won {
		t.Errorf("match stat = %d/%d won=%v, want 3/1 won", ms.Kills, ms.Deaths, ms.Won)
	}
	if len(ms.Rounds) != 3 {
		t.Errorf("match has %d rounds, want 3", len(ms.Rounds))
	}
	if ms.ImpactScore <= 0 || ms.ImpactScore > 100 {
		t.Errorf("ImpactScore = %v, want within (0, 100]", ms.ImpactScore)
	}
}

// ---- Per-match error isolation ----

func TestGenerate_SkipsBrokenMatches(t *testing.T) {
	good := testMatch()
	bad := model.MatchRecord{MatchID: "match-bad"} // no players or teams

	bundle := generate(t, bad, good)

	if len(bundle.Matches) != 1 {
		t.Fatalf("got %d matches, want 1 (broken match skipped)", len(bundle.Matches))
	}
	if bundle.Matches[0].MatchID != "match-1" {
		t.Errorf("kept match = %q, want match-1", bundle.Matches[0].MatchID)
	}
}

func TestGenerate_TwoMatchesSameAgent(t *testing.T) {
	first := testMatch()
	second := testMatch()
	second.MatchID = "match-2"

	bundle := generate(t, first, second)

	if len(bundle.Agents) != 1 {
		t.Fatalf("got %d agents, want 1", len(bundle.Agents))
	}
	tot := bundle.Agents[0].Seasons[0].Totals
	if tot.Kills != 6 || tot.MatchesPlayed != 2 {
		t.Errorf("accumulated totals = %d kills %d matches, want 6/2", tot.Kills, tot.MatchesPlayed)
	}
	if len(bundle.Matches) != 2 {
		t.Errorf("got %d match stats, want 2", len(bundle.Matches))
	}
}
