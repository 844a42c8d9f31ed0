// Package cases stores escalated onboarding cases awaiting a compliance
// decision. A case holds the risk assessment snapshot that triggered the
// escalation plus a mutable review status; one case per email, with a
// later evaluation overwriting the prior case entirely.
package cases

import (
	"context"
	"errors"
	"time"

	"github.com/trustgate/trustgate/internal/risk"
)

// ErrNotFound is returned when no case exists for an email.
var ErrNotFound = errors.New("cases: not found")

// Action is a compliance decision on an escalated case. Free-form strings
// at the API surface are normalized into this two-valued enum before they
// reach the ledger, so a typo can't silently block an applicant.
type Action string

const (
	ActionApproved Action = "Approved"
	ActionRejected Action = "Rejected"
)

// ParseAction normalizes a raw decision string. "Approved" (exact literal)
// maps to ActionApproved; everything else is a rejection.
func ParseAction(raw string) Action {
	if raw == string(ActionApproved) {
		return ActionApproved
	}
	return ActionRejected
}

// FinalStatus is the account status an action resolves to.
func (a Action) FinalStatus() risk.AccountStatus {
	if a == ActionApproved {
		return risk.StatusActivated
	}
	return risk.StatusBlocked
}

// Case is one escalated onboarding case.
type Case struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Assessment   risk.Assessment `json:"assessment"`
	ReviewStatus string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Open reports whether the case still awaits a compliance decision. A
// decided case keeps its row (the action literal becomes the review
// status) but is no longer open.
func (c *Case) Open() bool {
	return c.ReviewStatus == risk.ReviewUnderManual || c.ReviewStatus == risk.ReviewAwaitingCompliance
}

// Store persists escalated cases keyed by email. Implementations must make
// Upsert/Get/decision updates linearizable per email: a decision reported
// as applied is visible to the next Get.
type Store interface {
	// Upsert stores the case, replacing any existing case for the email.
	Upsert(ctx context.Context, c *Case) error
	// Get returns the case for the email, or ErrNotFound.
	Get(ctx context.Context, email string) (*Case, error)
	// List returns a snapshot of all cases keyed by email.
	List(ctx context.Context) (map[string]*Case, error)
	// SetReviewStatus overwrites the review status for the email's case,
	// or returns ErrNotFound.
	SetReviewStatus(ctx context.Context, email, status string) error
}
