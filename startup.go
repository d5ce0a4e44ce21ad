package main

import (
	"context"
	"database/sql"
	"log"
)

const startupAdvisoryLockID int64 = 739218465

var startupLockConn *sql.Conn

// acquireStartupLock elects the one instance allowed to run
// first-boot initialization. The lock rides on a dedicated connection
// and is held for the life of the process.
func acquireStartupLock(ctx context.Context, db *sql.DB) (*sql.Conn, bool, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, startupAdvisoryLockID).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, false, err
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}
	return conn, true, nil
}

// seedPrizePool fills an empty pool with size tokens. The seeded row
// count, not the config value, is the cap from then on; a non-empty
// pool is never resized.
func seedPrizePool(ctx context.Context, store Store, size int) error {
	inserted, err := store.SeedPrizePool(ctx, size)
	if err != nil {
		return err
	}
	if inserted > 0 {
		log.Println("Seeded prize pool:", inserted, "tokens")
	} else {
		log.Println("Prize pool already seeded; skipping")
	}
	return nil
}
