package main

import "context"

// Store is the persistence boundary for the prize pool and the winner
// registry. All mutation goes through ClaimPrize and RecordWin; both
// must hold up under concurrent callers racing on the same rows.
type Store interface {
	// PoolSize returns the total number of seeded prize tokens. The
	// seeded row count is the binding cap, not whatever the config says.
	PoolSize(ctx context.Context) (int, error)

	// RemainingPrizes counts tokens that are still unclaimed. Always a
	// derived read against the store, never a cached counter.
	RemainingPrizes(ctx context.Context) (int, error)

	// ClaimPrize atomically transitions one free token to claimed by
	// deviceID. Returns true iff this call performed the transition.
	// With one free token and any number of concurrent callers, exactly
	// one caller sees true.
	ClaimPrize(ctx context.Context, deviceID string) (bool, error)

	// HasWon reports whether deviceID has a winner record.
	HasWon(ctx context.Context, deviceID string) (bool, error)

	// RecordWin inserts a winner record for deviceID if absent. A
	// concurrent or repeated insert for the same device is a silent
	// no-op, never an error and never a duplicate row.
	RecordWin(ctx context.Context, deviceID string) error

	// SeedPrizePool creates n tokens iff the pool is empty and returns
	// the number actually inserted. An already-seeded pool is left
	// untouched regardless of n.
	SeedPrizePool(ctx context.Context, n int) (int, error)
}
