package services

import (
	"context"
	"fmt"
	"sort"

	"luckyDrawAPI/internal/prize"
	"luckyDrawAPI/internal/store"
)

// LeaderboardService reads through to the store on every call; nothing is cached.
type LeaderboardService struct {
	store store.Store
	limit int
}

// NewLeaderboardService returns at most limit entries per call; 0 means all.
func NewLeaderboardService(st store.Store, limit int) *LeaderboardService {
	return &LeaderboardService{store: st, limit: limit}
}

func (s *LeaderboardService) Top(ctx context.Context) ([]prize.Entry, error) {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	// stable keeps insertion order, so equal amounts rank the earlier claim first
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount > entries[j].Amount
	})

	if s.limit > 0 && len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries, nil
}
