// Package store holds the row stores that persist lucky-draw claims.
package store

import (
	"context"
	"errors"
	"fmt"

	"luckyDrawAPI/internal/prize"
)

var (
	// ErrNotConfigured means the selected backend is missing its endpoint or credentials.
	ErrNotConfigured = errors.New("store not configured")
	// ErrUpstream wraps every transport or non-success failure from a remote backend.
	ErrUpstream = errors.New("store upstream failure")
)

// Result is the outcome of a claim: the stored entry and whether it already existed.
type Result struct {
	Entry     prize.Entry
	Duplicate bool
}

// Store records at most one entry per normalized handle.
type Store interface {
	// Claim appends entry unless entry.Handle is already recorded, in which case the
	// first recorded entry is returned with Duplicate set and nothing is written.
	Claim(ctx context.Context, entry prize.Entry) (Result, error)
	// Entries returns every recorded entry in insertion order.
	Entries(ctx context.Context) ([]prize.Entry, error)
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type unconfigured struct {
	reason string
}

// Unconfigured returns a Store that fails every call with ErrNotConfigured.
func Unconfigured(reason string) Store {
	return unconfigured{reason: reason}
}

func (u unconfigured) Claim(ctx context.Context, entry prize.Entry) (Result, error) {
	return Result{}, fmt.Errorf("%w: %s", ErrNotConfigured, u.reason)
}

func (u unconfigured) Entries(ctx context.Context) ([]prize.Entry, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotConfigured, u.reason)
}

func (u unconfigured) Ping(ctx context.Context) error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, u.reason)
}

func upstreamErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}
