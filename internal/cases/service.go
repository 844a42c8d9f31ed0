package cases

import (
	"context"
	"time"

	"github.com/trustgate/trustgate/internal/idgen"
	"github.com/trustgate/trustgate/internal/risk"
)

// Service wraps a Store with the escalation and decision workflows.
type Service struct {
	store Store
}

// NewService creates a case service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Escalate opens (or replaces) the case for the email with a fresh
// snapshot of the triggering assessment.
func (s *Service) Escalate(ctx context.Context, email string, a risk.Assessment) (*Case, error) {
	c := &Case{
		ID:           idgen.WithPrefix("case_"),
		Email:        email,
		Assessment:   a,
		ReviewStatus: a.ReviewStatus(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyDecision records a compliance decision on the email's case. The
// literal action string becomes the case's review status, and the mapped
// final account status is returned. Unknown email → ErrNotFound.
func (s *Service) ApplyDecision(ctx context.Context, email string, action Action) (risk.AccountStatus, error) {
	if err := s.store.SetReviewStatus(ctx, email, string(action)); err != nil {
		return "", err
	}
	return action.FinalStatus(), nil
}

// Get returns the case for the email, or ErrNotFound.
func (s *Service) Get(ctx context.Context, email string) (*Case, error) {
	return s.store.Get(ctx, email)
}

// List returns a snapshot of all open cases keyed by email.
func (s *Service) List(ctx context.Context) (map[string]*Case, error) {
	return s.store.List(ctx)
}
