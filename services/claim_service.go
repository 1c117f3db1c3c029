package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"luckyDrawAPI/internal/prize"
	"luckyDrawAPI/internal/store"
)

var ErrEmptyHandle = errors.New("handle is required")

// ClaimResult carries the recorded entry for a handle. Duplicate means the handle had
// already claimed and Entry is that first claim.
type ClaimResult struct {
	Entry     prize.Entry
	Duplicate bool
}

// ClaimService draws a prize for a handle and records it, once per handle.
//
// Whether two simultaneous first claims can both land depends on the store: memory
// and postgres insert-if-absent atomically, the spreadsheet backends do not.
type ClaimService struct {
	store  store.Store
	prizes prize.Table
	rng    prize.RandomSource
	now    func() time.Time
}

type ClaimOption func(*ClaimService)

// WithRandomSource replaces the process random source, mainly for tests.
func WithRandomSource(src prize.RandomSource) ClaimOption {
	return func(s *ClaimService) { s.rng = src }
}

func WithClock(now func() time.Time) ClaimOption {
	return func(s *ClaimService) { s.now = now }
}

// NewClaimService expects a validated prize table.
func NewClaimService(st store.Store, prizes prize.Table, opts ...ClaimOption) *ClaimService {
	s := &ClaimService{
		store:  st,
		prizes: prizes,
		rng:    prize.NewRandomSource(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ClaimService) Claim(ctx context.Context, rawHandle string) (*ClaimResult, error) {
	handle := prize.NormalizeHandle(rawHandle)
	if handle == "" {
		claimsTotal.WithLabelValues(outcomeRejected).Inc()
		return nil, ErrEmptyHandle
	}

	tier := s.prizes.Draw(s.rng)
	entry := prize.Entry{
		ID:        uuid.New(),
		Handle:    handle,
		Amount:    tier.Amount,
		ClaimedAt: s.now(),
	}

	res, err := s.store.Claim(ctx, entry)
	if err != nil {
		claimsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("failed to record claim for %s: %w", handle, err)
	}

	if res.Duplicate {
		claimsTotal.WithLabelValues(outcomeDuplicate).Inc()
		log.WithFields(log.Fields{
			"handle":         handle,
			"previousAmount": res.Entry.Amount,
		}).Info("duplicate claim")
		return &ClaimResult{Entry: res.Entry, Duplicate: true}, nil
	}

	claimsTotal.WithLabelValues(outcomeWon).Inc()
	prizeAmountTotal.WithLabelValues(fmt.Sprint(res.Entry.Amount)).Inc()
	log.WithFields(log.Fields{
		"handle": handle,
		"amount": res.Entry.Amount,
	}).Info("prize claimed")

	return &ClaimResult{Entry: res.Entry}, nil
}
