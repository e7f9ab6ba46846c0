package henrikdev

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"valtrack/internal/model"
)

// matchJSON renders a minimal stored-match payload for the given id.
func matchJSON(matchID string) string {
	return fmt.Sprintf(`{
		"metadata": {"matchid": %q, "map_id": "ascent", "mode": "Competitive", "season_id": "s1", "game_length": 1800000, "game_start": 1756700000},
		"players": {"all_players": [
			{"puuid": "p1", "name": "Player", "tag": "EU1", "team": "Red", "character_id": "jett", "currenttier": 12,
			 "stats": {"kills": 18, "deaths": 12, "assists": 4, "score": 4500}},
			{"puuid": "e1", "team": "Blue", "character_id": "omen"}
		]},
		"teams": {"red": {"has_won": true, "rounds_won": 13, "rounds_lost": 7}, "blue": {"has_won": false, "rounds_won": 7, "rounds_lost": 13}},
		"rounds": [{
			"winning_team": "Red",
			"plant_events": {"planted_by": {"puuid": "p1"}},
			"defuse_events": {"defused_by": null},
			"player_stats": [{
				"player_puuid": "p1",
				"kill_events": [{
					"kill_time_in_round": 12345,
					"killer_puuid": "p1", "victim_puuid": "e1",
					"damage_weapon_type": "Weapon", "damage_weapon_id": "vandal",
					"victim_death_location": {"x": 100.5, "y": -42},
					"assistants": [{"assistant_puuid": "p2"}]
				}],
				"economy": {"loadout_value": 3900, "spent": 2900, "weapon": {"id": "vandal"}, "armor": {"id": "heavy"}}
			}]
		}]
	}`, matchID)
}

func envelope(matchIDs ...string) string {
	bodies := make([]string, len(matchIDs))
	for i, id := range matchIDs {
		bodies[i] = matchJSON(id)
	}
	return `{"data": [` + strings.Join(bodies, ",") + `]}`
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Region: "eu"})
	c.sleep = func(time.Duration) {}
	return c
}

func TestMatchHistory_MapsWireFormat(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q, want test-key", got)
		}
		if !strings.HasPrefix(r.URL.Path, "/v3/by-puuid/matches/eu/p1") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, envelope("m1"))
	}))

	matches, err := c.MatchHistory(context.Background(), "p1", 1)
	if err != nil {
		t.Fatalf("MatchHistory: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.MatchID != "m1" || m.MapID != "ascent" || m.SeasonID != "s1" {
		t.Errorf("metadata = %q/%q/%q", m.MatchID, m.MapID, m.SeasonID)
	}
	if !m.Ranked {
		t.Error("Competitive mode should map to Ranked=true")
	}
	if m.StartedAt != time.Unix(1756700000, 0).UTC() {
		t.Errorf("StartedAt = %v", m.StartedAt)
	}

	if len(m.Players) != 2 {
		t.Fatalf("got %d players, want 2", len(m.Players))
	}
	p := m.Players[0]
	if p.PUUID != "p1" || p.TeamID != model.TeamRed || p.AgentID != "jett" || p.Rank != 12 {
		t.Errorf("player = %+v", p)
	}

	if len(m.Rounds) != 1 {
		t.Fatalf("got %d rounds, want 1", len(m.Rounds))
	}
	r := m.Rounds[0]
	if r.RoundNum != 0 {
		t.Errorf("RoundNum = %d, want index 0", r.RoundNum)
	}
	if r.PlanterID != "p1" || r.DefuserID != "" {
		t.Errorf("plant/defuse = %q/%q", r.PlanterID, r.DefuserID)
	}

	ps := r.PlayerStats[0]
	if len(ps.Kills) != 1 {
		t.Fatalf("got %d kills, want 1", len(ps.Kills))
	}
	k := ps.Kills[0]
	if k.TimeSinceRoundStartMillis != 12345 || k.VictimID != "e1" {
		t.Errorf("kill = %+v", k)
	}
	if k.FinishingDamage.DamageItem != "vandal" {
		t.Errorf("FinishingDamage = %+v", k.FinishingDamage)
	}
	if k.VictimLocation.X != 100.5 || k.VictimLocation.Y != -42 {
		t.Errorf("VictimLocation = %+v", k.VictimLocation)
	}
	if len(k.Assistants) != 1 || k.Assistants[0] != "p2" {
		t.Errorf("Assistants = %v", k.Assistants)
	}
	if ps.Economy.WeaponID != "vandal" || ps.Economy.LoadoutValue != 3900 {
		t.Errorf("Economy = %+v", ps.Economy)
	}
}

func TestMatchHistory_PagesBatches(t *testing.T) {
	var starts []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		starts = append(starts, r.URL.Query().Get("start"))
		switch r.URL.Query().Get("start") {
		case "0":
			ids := make([]string, 10)
			for i := range ids {
				ids[i] = fmt.Sprintf("m%d", i)
			}
			fmt.Fprint(w, envelope(ids...))
		default:
			fmt.Fprint(w, envelope("m10", "m11"))
		}
	}))

	matches, err := c.MatchHistory(context.Background(), "p1", 15)
	if err != nil {
		t.Fatalf("MatchHistory: %v", err)
	}
	if len(matches) != 12 {
		t.Errorf("got %d matches, want 12 (server ran out)", len(matches))
	}
	if len(starts) != 2 || starts[0] != "0" || starts[1] != "10" {
		t.Errorf("page starts = %v, want [0 10]", starts)
	}
}

func TestGet_RetriesOnRateLimit(t *testing.T) {
	var calls int
	var slept []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, envelope("m1"))
	}))
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	matches, err := c.MatchHistory(context.Background(), "p1", 1)
	if err != nil {
		t.Fatalf("MatchHistory: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches after retry, want 1", len(matches))
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
	if len(slept) != 1 || slept[0] != 7*time.Second {
		t.Errorf("slept %v, want [7s] from Retry-After header", slept)
	}
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.MatchHistory(context.Background(), "p1", 1)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if calls != maxRetries+1 {
		t.Errorf("server saw %d calls, want %d", calls, maxRetries+1)
	}
}

func TestGet_ErrorStatusIsFatal(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"not found"}]}`, http.StatusNotFound)
	}))

	_, err := c.MatchHistory(context.Background(), "p1", 1)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want a 404 failure", err)
	}
}

func TestParseMatches(t *testing.T) {
	fromEnvelope, err := ParseMatches([]byte(envelope("m1", "m2")))
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if len(fromEnvelope) != 2 || fromEnvelope[1].MatchID != "m2" {
		t.Errorf("envelope parse = %d matches", len(fromEnvelope))
	}

	fromArray, err := ParseMatches([]byte("[" + matchJSON("m9") + "]"))
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(fromArray) != 1 || fromArray[0].MatchID != "m9" {
		t.Errorf("bare array parse = %+v", fromArray)
	}

	if _, err := ParseMatches([]byte("not json")); err == nil {
		t.Error("expected an error for malformed input")
	}
}
