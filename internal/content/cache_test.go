package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"valtrack/internal/model"
)

// fakeSource counts calls per lookup so memoization is observable.
type fakeSource struct {
	mapCalls, agentCalls int
	failAgents           bool
}

func (f *fakeSource) MapInfo(ctx context.Context, mapID string) (*MapInfo, error) {
	f.mapCalls++
	return &MapInfo{
		Name:     "Ascent",
		ImageURL: "https://img/ascent.png",
		Callouts: []model.Callout{{Region: "Site", SuperRegion: "A"}},
	}, nil
}

func (f *fakeSource) Agent(ctx context.Context, agentID string) (*Info, error) {
	f.agentCalls++
	if f.failAgents {
		return nil, errors.New("unavailable")
	}
	return &Info{Name: "Jett", ImageURL: "https://img/jett.png"}, nil
}

func (f *fakeSource) Weapon(ctx context.Context, weaponID string) (*Info, error) {
	return &Info{Name: "Vandal"}, nil
}

func (f *fakeSource) Season(ctx context.Context, seasonID string) (*Info, error) {
	return &Info{Name: "Episode 9 Act 1"}, nil
}

func TestMapCallouts_FetchedOncePerMap(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		callouts, err := cache.MapCallouts(ctx, "ascent")
		if err != nil {
			t.Fatalf("MapCallouts: %v", err)
		}
		if len(callouts) != 1 || callouts[0].SuperRegion != "A" {
			t.Errorf("callouts = %+v", callouts)
		}
	}
	if src.mapCalls != 1 {
		t.Errorf("source fetched %d times, want 1 (memoized)", src.mapCalls)
	}
}

func TestEnrich_FillsBlankStubs(t *testing.T) {
	src := &fakeSource{}
	cache := NewCache(src)

	enriched := &model.AgentStat{AgentID: "jett"}
	preset := &model.AgentStat{AgentID: "sage", Name: "Sage"}
	mapStat := &model.MapStat{MapID: "ascent"}
	season := &model.SeasonStat{SeasonID: "s1"}

	cache.Enrich(context.Background(), nil, &model.StatsBundle{
		Agents:  []*model.AgentStat{enriched, preset},
		Maps:    []*model.MapStat{mapStat},
		Seasons: []*model.SeasonStat{season},
	})

	if enriched.Name != "Jett" || enriched.ImageURL != "https://img/jett.png" {
		t.Errorf("blank agent not enriched: %+v", enriched)
	}
	if preset.Name != "Sage" {
		t.Errorf("already-named agent overwritten: %+v", preset)
	}
	if src.agentCalls != 1 {
		t.Errorf("agent lookups = %d, want 1 (named entries skipped)", src.agentCalls)
	}
	if mapStat.Name != "Ascent" {
		t.Errorf("map not enriched: %+v", mapStat)
	}
	if season.Name != "Episode 9 Act 1" {
		t.Errorf("season not enriched: %+v", season)
	}
}

func TestEnrich_LookupFailureKeepsBlankStub(t *testing.T) {
	src := &fakeSource{failAgents: true}
	cache := NewCache(src)

	a := &model.AgentStat{AgentID: "jett"}
	cache.Enrich(context.Background(), nil, &model.StatsBundle{Agents: []*model.AgentStat{a}})

	if a.Name != "" {
		t.Errorf("expected blank stub after lookup failure, got %q", a.Name)
	}
}

func TestClient_MapInfoWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/ascent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data": {
			"displayName": "Ascent",
			"displayIcon": "https://img/ascent.png",
			"callouts": [
				{"regionName": "Site", "superRegionName": "A", "location": {"x": 10.5, "y": 20}},
				{"regionName": "Courtyard", "superRegionName": "Mid", "location": {"x": -3, "y": 4}}
			]
		}}`)
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL).MapInfo(context.Background(), "ascent")
	if err != nil {
		t.Fatalf("MapInfo: %v", err)
	}
	if info.Name != "Ascent" {
		t.Errorf("Name = %q", info.Name)
	}
	if len(info.Callouts) != 2 {
		t.Fatalf("got %d callouts, want 2", len(info.Callouts))
	}
	if c := info.Callouts[0]; c.SuperRegion != "A" || c.Location.X != 10.5 {
		t.Errorf("callout = %+v", c)
	}
}
