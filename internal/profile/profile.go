// Package profile stores submitted applicant profiles keyed by email.
// Re-submission overwrites the prior profile wholesale (last write wins,
// no merge).
package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no profile exists for an email.
var ErrNotFound = errors.New("profile: not found")

// Profile is one submitted applicant profile. The well-known fields feed
// the risk evaluator; anything else the applicant submitted rides along
// in Extra untouched.
type Profile struct {
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	IDNumber    string            `json:"id_number"`
	Country     string            `json:"country"`
	Extra       map[string]string `json:"extra,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// Store persists profiles.
type Store interface {
	// Put stores the profile, replacing any prior profile for the email.
	Put(ctx context.Context, p *Profile) error
	// Get returns the profile for the email, or ErrNotFound.
	Get(ctx context.Context, email string) (*Profile, error)
}
