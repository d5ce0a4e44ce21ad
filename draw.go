package main

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	ReasonAlreadyWinner = "already_winner"
	ReasonNoPrizesLeft  = "no_prizes_left"
)

// DrawOutcome is the business result of a draw. Losing the gate,
// having won before, and an exhausted pool are all ordinary outcomes;
// errors are reserved for store failures.
type DrawOutcome struct {
	Won       bool
	Reason    string
	Remaining int
}

type DrawEngine struct {
	store       Store
	defaultRate float64
	roll        func() float64
}

func NewDrawEngine(store Store, defaultRate float64) *DrawEngine {
	return &DrawEngine{
		store:       store,
		defaultRate: defaultRate,
		roll:        newLockedRoll(time.Now().UnixNano()),
	}
}

// newLockedRoll returns a uniform [0,1) roll backed by a seeded
// generator. rand.Rand is not safe for concurrent use.
func newLockedRoll(seed int64) func() float64 {
	var mu sync.Mutex
	rnd := rand.New(rand.NewSource(seed))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rnd.Float64()
	}
}

// Draw runs one request through the decision pipeline: prior-win
// check, probabilistic gate, atomic claim, registry write. The
// prior-win check comes first so a past winner never re-rolls, and the
// gate runs before the claim so guaranteed losses never touch the
// pool. rate is per-request; nil means the configured default. Values
// outside [0,1] are taken as-is: <= 0 always loses the gate, >= 1
// always passes it.
func (e *DrawEngine) Draw(ctx context.Context, deviceID string, rate *float64) (DrawOutcome, error) {
	winRate := e.defaultRate
	if rate != nil {
		winRate = *rate
	}

	won, err := e.store.HasWon(ctx, deviceID)
	if err != nil {
		return DrawOutcome{}, err
	}
	if won {
		remaining, err := e.store.RemainingPrizes(ctx)
		if err != nil {
			return DrawOutcome{}, err
		}
		return DrawOutcome{Reason: ReasonAlreadyWinner, Remaining: remaining}, nil
	}

	if e.roll() >= winRate {
		remaining, err := e.store.RemainingPrizes(ctx)
		if err != nil {
			return DrawOutcome{}, err
		}
		return DrawOutcome{Remaining: remaining}, nil
	}

	claimed, err := e.store.ClaimPrize(ctx, deviceID)
	if err != nil {
		return DrawOutcome{}, err
	}
	if !claimed {
		return DrawOutcome{Reason: ReasonNoPrizesLeft}, nil
	}

	// A failure here leaves the token consumed with no winner record.
	// The pool cap still holds; reconciliation is out of scope.
	if err := e.store.RecordWin(ctx, deviceID); err != nil {
		return DrawOutcome{}, err
	}

	remaining, err := e.store.RemainingPrizes(ctx)
	if err != nil {
		return DrawOutcome{}, err
	}
	return DrawOutcome{Won: true, Remaining: remaining}, nil
}
