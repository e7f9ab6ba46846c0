package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"valtrack/internal/model"
)

// UpsertBundle writes every record of the bundle in one transaction, keyed by
// composite id. INSERT OR REPLACE makes re-persisting the same bundle a no-op
// beyond the rewrite.
func (db *DB) UpsertBundle(playerID string, b *model.StatsBundle) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range b.Agents {
		if err := upsertRow(tx, "agent_stats", a.ID, playerID, a.AgentID, a.Premium, a); err != nil {
			return err
		}
	}
	for _, m := range b.Maps {
		if err := upsertRow(tx, "map_stats", m.ID, playerID, m.MapID, m.Premium, m); err != nil {
			return err
		}
	}
	for _, w := range b.Weapons {
		if err := upsertRow(tx, "weapon_stats", w.ID, playerID, w.WeaponID, w.Premium, w); err != nil {
			return err
		}
	}
	for _, s := range b.Seasons {
		if err := upsertRow(tx, "season_stats", s.ID, playerID, s.SeasonID, s.Premium, s); err != nil {
			return err
		}
	}
	for _, m := range b.Matches {
		if err := upsertRow(tx, "match_stats", m.ID, playerID, m.MatchID, m.Premium, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertRow(tx *sql.Tx, table, id, playerID, entityID string, premium bool, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", table, id, err)
	}
	_, err = tx.Exec(
		fmt.Sprintf("INSERT OR REPLACE INTO %s(id, player_id, entity_id, premium, payload) VALUES (?, ?, ?, ?, ?)", table),
		id, playerID, entityID, boolInt(premium), string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", table, id, err)
	}
	return nil
}

// GetBundle loads every stored record for a player. A player with no rows
// gets an empty (non-nil) bundle.
func (db *DB) GetBundle(playerID string) (*model.StatsBundle, error) {
	b := &model.StatsBundle{}
	if err := loadRows(db.conn, "agent_stats", playerID, &b.Agents); err != nil {
		return nil, err
	}
	if err := loadRows(db.conn, "map_stats", playerID, &b.Maps); err != nil {
		return nil, err
	}
	if err := loadRows(db.conn, "weapon_stats", playerID, &b.Weapons); err != nil {
		return nil, err
	}
	if err := loadRows(db.conn, "season_stats", playerID, &b.Seasons); err != nil {
		return nil, err
	}
	if err := loadRows(db.conn, "match_stats", playerID, &b.Matches); err != nil {
		return nil, err
	}
	return b, nil
}

func loadRows[T any](conn *sql.DB, table, playerID string, out *[]*T) error {
	rows, err := conn.Query(
		fmt.Sprintf("SELECT payload FROM %s WHERE player_id = ? ORDER BY id", table), playerID)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		record := new(T)
		if err := json.Unmarshal([]byte(payload), record); err != nil {
			return fmt.Errorf("unmarshal %s row: %w", table, err)
		}
		*out = append(*out, record)
	}
	return rows.Err()
}

// ProcessedMatchIDs returns the set of match ids already ingested for a
// player. The generate command consults this before aggregation, since the
// merge itself performs no match de-duplication.
func (db *DB) ProcessedMatchIDs(playerID string) (map[string]bool, error) {
	rows, err := db.conn.Query("SELECT match_id FROM processed_matches WHERE player_id = ?", playerID)
	if err != nil {
		return nil, fmt.Errorf("query processed matches: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// MarkProcessed records match ids as ingested for a player.
func (db *DB) MarkProcessed(playerID string, matchIDs []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range matchIDs {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO processed_matches(match_id, player_id, processed_at) VALUES (?, ?, ?)",
			id, playerID, now,
		); err != nil {
			return fmt.Errorf("mark processed %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
