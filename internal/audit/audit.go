// Package audit keeps an append-only record of every completed risk
// evaluation. Entries are never mutated or deleted; append order is the
// total order, and the analytics summary is computed from a snapshot read.
package audit

import (
	"context"
	"time"

	"github.com/trustgate/trustgate/internal/risk"
)

// Entry is one completed evaluation outcome.
type Entry struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	Timestamp  time.Time     `json:"timestamp"`
	Score      int           `json:"risk_score"`
	TrustIndex int           `json:"trust_index"`
	Tier       risk.Tier     `json:"risk_category"`
	Decision   risk.Decision `json:"decision"`
	Signals    []string      `json:"signals"`
}

// Store persists audit entries. Append must be safe under concurrent
// writers without dropping or corrupting entries; List is a restartable
// snapshot read in append order, not a consumed stream.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context) ([]*Entry, error)
}
