package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// snapshotClock stamps GeneratedAt. Tests freeze it with SetClock.
var snapshotClock = clockwork.NewRealClock()

// SetClock replaces the clock behind NewSnapshot; nil restores wall time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	snapshotClock = c
}

// Snapshot is the outcome of one aggregation run.
type Snapshot struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Matrix      Matrix         `json:"matrix"`
	Stats       AggregateStats `json:"stats"`
}

// NewSnapshot stamps a matrix with a fresh run ID and the current time.
func NewSnapshot(m Matrix, stats AggregateStats) Snapshot {
	return Snapshot{
		RunID:       uuid.New().String(),
		GeneratedAt: snapshotClock.Now().UTC(),
		Matrix:      m,
		Stats:       stats,
	}
}
