package aggregator

import "valtrack/internal/model"

// applyMap folds one match into the map accumulator: season totals, side
// splits with clutch buckets, and heatmaps.
func (g *Generator) applyMap(mapStats map[string]*model.MapStat, mf *matchFacts) {
	mapID := mf.match.MapID
	if mapID == "" {
		return
	}

	stat, ok := mapStats[mapID]
	if !ok {
		stat = &model.MapStat{
			ID:       model.CompositeID(mf.playerID, mapID),
			PlayerID: mf.playerID,
			MapID:    mapID,
		}
		mapStats[mapID] = stat
	}

	sp := seasonEntry(&stat.Seasons, mf.match.SeasonID)
	mf.addTotals(&sp.Totals)
	mf.addSides(sp)
	mf.addHeatmaps(sp)
}
