package main

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prize_tokens (
			id TEXT PRIMARY KEY,
			claimed_by TEXT,
			claimed_at TIMESTAMPTZ
		);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS winners (
			device_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS prize_tokens_free_idx
			ON prize_tokens (id)
			WHERE claimed_by IS NULL;
	`)
	return err
}

func (s *PostgresStore) PoolSize(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prize_tokens
	`).Scan(&n)
	return n, err
}

func (s *PostgresStore) RemainingPrizes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prize_tokens WHERE claimed_by IS NULL
	`).Scan(&n)
	return n, err
}

// ClaimPrize picks any free token and marks it claimed in a single
// statement, so the find and the mark cannot be split by a concurrent
// writer. SKIP LOCKED steps over rows another claim is holding instead
// of queueing on them; which free token gets claimed does not matter.
// The NOT EXISTS guard stops a device that already holds a token from
// consuming a second one when the same device races itself past the
// registry check.
func (s *PostgresStore) ClaimPrize(ctx context.Context, deviceID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE prize_tokens
		SET claimed_by = $1, claimed_at = NOW()
		WHERE id = (
			SELECT id
			FROM prize_tokens
			WHERE claimed_by IS NULL
				AND NOT EXISTS (
					SELECT 1 FROM prize_tokens held WHERE held.claimed_by = $1
				)
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
	`, deviceID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *PostgresStore) HasWon(ctx context.Context, deviceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM winners WHERE device_id = $1)
	`, deviceID).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) RecordWin(ctx context.Context, deviceID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO winners (device_id, created_at)
		VALUES ($1, NOW())
		ON CONFLICT (device_id) DO NOTHING
	`, deviceID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return nil
	}
	return err
}

func (s *PostgresStore) SeedPrizePool(ctx context.Context, n int) (int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prize_tokens
	`).Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prize_tokens (id) VALUES ($1)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, uuid.NewString()); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
