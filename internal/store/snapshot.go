package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/foyer/internal/model"
)

const (
	sqliteUpsert = `INSERT INTO snapshot (bucket, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	postgresUpsert = `INSERT INTO snapshot (bucket, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (bucket) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
)

// SnapshotStore keeps one JSON payload per State bucket in the snapshot
// table. SQLite and Postgres differ only in placeholder syntax.
type SnapshotStore struct {
	db     *sql.DB
	upsert string
}

// NewSQLiteGateway expects a database opened with database.Open.
func NewSQLiteGateway(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, upsert: sqliteUpsert}
}

// NewPostgresGateway expects a database opened with database.OpenPostgres.
func NewPostgresGateway(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, upsert: postgresUpsert}
}

func (s *SnapshotStore) Load(ctx context.Context) (model.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM snapshot`)
	if err != nil {
		return model.State{}, fmt.Errorf("select snapshot: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]byte)
	for rows.Next() {
		var bucket, payload string
		if err := rows.Scan(&bucket, &payload); err != nil {
			return model.State{}, fmt.Errorf("scan snapshot: %w", err)
		}
		raw[bucket] = []byte(payload)
	}
	if err := rows.Err(); err != nil {
		return model.State{}, fmt.Errorf("iterate snapshot: %w", err)
	}

	if len(raw) == 0 {
		return model.DefaultState(), nil
	}
	return decodeBuckets(raw)
}

func (s *SnapshotStore) Save(ctx context.Context, st model.State) (retErr error) {
	buckets, err := encodeBuckets(st)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, name := range bucketNames {
		if _, err := tx.ExecContext(ctx, s.upsert, name, string(buckets[name]), now); err != nil {
			return fmt.Errorf("upsert %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
