package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memToken struct {
	id        string
	claimedBy string
	claimedAt time.Time
}

// MemoryStore keeps the pool and registry behind one mutex. It backs
// DEV_MODE runs without a database and the test suite; the Postgres
// store is the production path.
type MemoryStore struct {
	mu      sync.Mutex
	tokens  []memToken
	winners map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		winners: make(map[string]time.Time),
	}
}

func (s *MemoryStore) PoolSize(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens), nil
}

func (s *MemoryStore) RemainingPrizes(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(), nil
}

func (s *MemoryStore) remainingLocked() int {
	n := 0
	for _, t := range s.tokens {
		if t.claimedBy == "" {
			n++
		}
	}
	return n
}

func (s *MemoryStore) ClaimPrize(ctx context.Context, deviceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.claimedBy == deviceID {
			return false, nil
		}
	}

	for i := range s.tokens {
		if s.tokens[i].claimedBy == "" {
			s.tokens[i].claimedBy = deviceID
			s.tokens[i].claimedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasWon(ctx context.Context, deviceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, won := s.winners[deviceID]
	return won, nil
}

func (s *MemoryStore) RecordWin(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.winners[deviceID]; !exists {
		s.winners[deviceID] = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStore) SeedPrizePool(ctx context.Context, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tokens) > 0 {
		return 0, nil
	}
	for i := 0; i < n; i++ {
		s.tokens = append(s.tokens, memToken{id: uuid.NewString()})
	}
	return n, nil
}

// WinnerCount is a test convenience; the HTTP surface derives awarded
// counts from the pool, not the registry.
func (s *MemoryStore) WinnerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.winners)
}
