// Package merge combines a previously persisted aggregate collection with a
// freshly generated one, per entity type, without losing either side's data.
// The merge is idempotent with respect to an empty input on either side, but
// NOT with respect to reprocessing the same match twice: feeding an
// already-merged match through generation again doubles its counters. Match
// de-duplication is the caller's job (the processed-match ledger).
package merge

import (
	"log/slog"

	"valtrack/internal/model"
)

// Strategy parameterizes the generic list merge for one entity type.
type Strategy[T any] struct {
	Name     string
	Identity func(T) string
	// Combine merges an old and a new item that share an identity.
	Combine func(old, new T) T
}

// Lists merges oldList into newList by identity. New items replace or merge
// with their old counterparts; old items with no new counterpart are
// preserved and appended. A panic inside the merge of one entity type is
// logged and that type falls back to the freshly generated list, so data is
// never silently dropped.
func Lists[T any](logger *slog.Logger, s Strategy[T], oldList, newList []T) (out []T) {
	if len(oldList) == 0 {
		return newList
	}
	if len(newList) == 0 {
		return oldList
	}

	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("merge failed, keeping newly generated list", "type", s.Name, "err", r)
			out = newList
		}
	}()

	oldByID := make(map[string]T, len(oldList))
	for _, item := range oldList {
		oldByID[s.Identity(item)] = item
	}

	merged := make([]T, 0, len(newList))
	seen := make(map[string]bool, len(newList))
	for _, item := range newList {
		id := s.Identity(item)
		seen[id] = true
		if old, ok := oldByID[id]; ok {
			merged = append(merged, s.Combine(old, item))
		} else {
			merged = append(merged, item)
		}
	}
	for _, item := range oldList {
		if !seen[s.Identity(item)] {
			merged = append(merged, item)
		}
	}
	return merged
}

// Engine merges whole stat bundles.
type Engine struct {
	Logger *slog.Logger
}

// Bundle merges every entity type of old and new.
func (e *Engine) Bundle(old, new *model.StatsBundle) *model.StatsBundle {
	if old == nil {
		return new
	}
	if new == nil {
		return old
	}
	return &model.StatsBundle{
		Agents:  Lists(e.Logger, AgentStrategy(), old.Agents, new.Agents),
		Maps:    Lists(e.Logger, MapStrategy(), old.Maps, new.Maps),
		Weapons: Lists(e.Logger, WeaponStrategy(), old.Weapons, new.Weapons),
		Seasons: Lists(e.Logger, SeasonStrategy(), old.Seasons, new.Seasons),
		Matches: Lists(e.Logger, MatchStrategy(), old.Matches, new.Matches),
	}
}
