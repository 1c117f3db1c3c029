package prize

import (
	"time"

	"github.com/google/uuid"
)

// Tier is one weighted slot of the prize wheel.
type Tier struct {
	Amount int64 `json:"amount" yaml:"amount"`
	Weight int   `json:"weight" yaml:"weight"`
}

// Entry is a recorded claim. One per normalized handle; never updated.
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Handle    string    `json:"handle" db:"handle"`
	Amount    int64     `json:"amount" db:"amount"`
	ClaimedAt time.Time `json:"claimedAt" db:"claimed_at"`
	// ClaimedAtRaw holds the upstream date text when it could not be parsed into ClaimedAt.
	ClaimedAtRaw string `json:"-" db:"-"`
}
