package content

import (
	"context"
	"log/slog"

	"valtrack/internal/model"
)

// Cache memoizes content lookups for the duration of one generation pass.
// Build a fresh Cache per pass and let it go out of scope afterwards; a
// process-wide content cache would go stale across game patches.
type Cache struct {
	src Source

	maps    map[string]*MapInfo
	agents  map[string]*Info
	weapons map[string]*Info
	seasons map[string]*Info
}

// NewCache wraps a content source with pass-scoped memoization.
func NewCache(src Source) *Cache {
	return &Cache{
		src:     src,
		maps:    make(map[string]*MapInfo),
		agents:  make(map[string]*Info),
		weapons: make(map[string]*Info),
		seasons: make(map[string]*Info),
	}
}

// MapCallouts returns the callout table for a map, fetching at most once per
// map id. Satisfies the aggregator's CalloutSource.
func (c *Cache) MapCallouts(ctx context.Context, mapID string) ([]model.Callout, error) {
	info, err := c.mapInfo(ctx, mapID)
	if err != nil {
		return nil, err
	}
	return info.Callouts, nil
}

func (c *Cache) mapInfo(ctx context.Context, mapID string) (*MapInfo, error) {
	if info, ok := c.maps[mapID]; ok {
		return info, nil
	}
	info, err := c.src.MapInfo(ctx, mapID)
	if err != nil {
		return nil, err
	}
	c.maps[mapID] = info
	return info, nil
}

func (c *Cache) lookup(ctx context.Context, cache map[string]*Info, id string,
	fetch func(context.Context, string) (*Info, error)) (*Info, error) {
	if info, ok := cache[id]; ok {
		return info, nil
	}
	info, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = info
	return info, nil
}

// Enrich fills blank display-metadata stubs on every entity in the bundle.
// Enrichment is opportunistic: a lookup failure is logged and the blank stub
// kept; it never fails the pipeline.
func (c *Cache) Enrich(ctx context.Context, logger *slog.Logger, b *model.StatsBundle) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, a := range b.Agents {
		if a.Name != "" {
			continue
		}
		info, err := c.lookup(ctx, c.agents, a.AgentID, c.src.Agent)
		if err != nil {
			logger.Warn("agent metadata lookup failed", "agent_id", a.AgentID, "err", err)
			continue
		}
		a.Name = info.Name
		a.ImageURL = info.ImageURL
	}
	for _, m := range b.Maps {
		if m.Name != "" {
			continue
		}
		info, err := c.mapInfo(ctx, m.MapID)
		if err != nil {
			logger.Warn("map metadata lookup failed", "map_id", m.MapID, "err", err)
			continue
		}
		m.Name = info.Name
		m.ImageURL = info.ImageURL
	}
	for _, w := range b.Weapons {
		if w.Name != "" {
			continue
		}
		info, err := c.lookup(ctx, c.weapons, w.WeaponID, c.src.Weapon)
		if err != nil {
			logger.Warn("weapon metadata lookup failed", "weapon_id", w.WeaponID, "err", err)
			continue
		}
		w.Name = info.Name
		w.ImageURL = info.ImageURL
	}
	for _, s := range b.Seasons {
		if s.Name != "" {
			continue
		}
		info, err := c.lookup(ctx, c.seasons, s.SeasonID, c.src.Season)
		if err != nil {
			logger.Warn("season metadata lookup failed", "season_id", s.SeasonID, "err", err)
			continue
		}
		s.Name = info.Name
	}
}
