package aggregator

import "valtrack/internal/model"

// applySeason folds one match into the flat per-season totals entity.
func (g *Generator) applySeason(seasons map[string]*model.SeasonStat, mf *matchFacts) {
	seasonID := mf.match.SeasonID
	if seasonID == "" {
		return
	}

	stat, ok := seasons[seasonID]
	if !ok {
		stat = &model.SeasonStat{
			ID:       model.CompositeID(mf.playerID, seasonID),
			PlayerID: mf.playerID,
			SeasonID: seasonID,
		}
		seasons[seasonID] = stat
	}
	mf.addTotals(&stat.Totals)
}
