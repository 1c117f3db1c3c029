package store

import (
	"context"
	"sync"

	"luckyDrawAPI/internal/prize"
)

// MemoryStore keeps claims in process memory. Claim is atomic per process.
type MemoryStore struct {
	mu      sync.Mutex
	entries []prize.Entry
	byKey   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[string]int)}
}

func (s *MemoryStore) Claim(ctx context.Context, entry prize.Entry) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byKey[entry.Handle]; ok {
		return Result{Entry: s.entries[i], Duplicate: true}, nil
	}

	s.byKey[entry.Handle] = len(s.entries)
	s.entries = append(s.entries, entry)
	return Result{Entry: entry}, nil
}

func (s *MemoryStore) Entries(ctx context.Context) ([]prize.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]prize.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Len reports how many claims have been recorded.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
