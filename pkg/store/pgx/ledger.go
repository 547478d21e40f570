package pgx

import (
	"context"
	"fmt"

	"github.com/openjurist/lawgraph/pkg/logger"
	"github.com/openjurist/lawgraph/pkg/store"
)

// kindTables maps a record kind to its source table. Table names are
// spliced into SQL from this map only.
var kindTables = map[store.RecordKind]string{
	store.KindCourt:             "search_court",
	store.KindPerson:            "people_db_person",
	store.KindPosition:          "people_db_position",
	store.KindDocket:            "search_docket",
	store.KindOriginatingDocket: "search_originatingcourtinformation",
	store.KindOpinion:           "search_opinion",
	store.KindCluster:           "search_opinioncluster",
	store.KindCitation:          "search_opinionscited",
	store.KindArgument:          "audio_audio",
}

func kindTable(kind store.RecordKind) (string, error) {
	table, ok := kindTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	return table, nil
}

func (s *Store) MarkAssigned(ctx context.Context, kind store.RecordKind, key, externalID string) error {
	table, err := kindTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET geo_id = $1 WHERE id::text = $2`, table)
	if _, err := s.conn.Exec(ctx, query, externalID, key); err != nil {
		return fmt.Errorf("mark assigned %s %s: %w", kind, key, err)
	}
	return nil
}

func (s *Store) MarkTouched(ctx context.Context, kind store.RecordKind, key string) error {
	table, err := kindTable(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET edited = true WHERE id::text = $1`, table)
	if _, err := s.conn.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("mark touched %s %s: %w", kind, key, err)
	}
	return nil
}

// ClearTouched drops the touched markers in every source table after a
// successful publish.
func (s *Store) ClearTouched(ctx context.Context) error {
	for _, kind := range store.AllKinds() {
		table := kindTables[kind]
		query := fmt.Sprintf(`UPDATE %s SET edited = false WHERE edited = true`, table)
		if _, err := s.conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("clear touched %s: %w", kind, err)
		}
	}
	return nil
}

// ResetRun rolls back every record touched since the last successful
// publish: assigned ids are discarded and the touched markers cleared,
// across all source tables.
func (s *Store) ResetRun(ctx context.Context) error {
	for _, kind := range store.AllKinds() {
		table := kindTables[kind]
		query := fmt.Sprintf(`UPDATE %s SET geo_id = NULL, edited = false WHERE edited = true`, table)
		tag, err := s.conn.Exec(ctx, query)
		if err != nil {
			return fmt.Errorf("reset run %s: %w", kind, err)
		}
		if tag.RowsAffected() > 0 {
			logger.Warn("[Ledger] Rolled back touched records", "kind", kind, "count", tag.RowsAffected())
		}
	}
	return nil
}
