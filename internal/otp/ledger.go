// Package otp issues and verifies one-time passcodes keyed by email.
//
// The ledger also tracks failed verification attempts per email. Attempt
// counters live for the process lifetime and, matching the onboarding
// flow's historical behavior, are NOT reset when a fresh code is issued:
// a returning applicant inherits their stale failure count. That behavior
// is questionable for legitimate retry flows, so it sits behind
// Policy.ResetAttemptsOnIssue rather than being hardwired.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// ErrEmailRequired is returned when an operation is missing the email key.
var ErrEmailRequired = errors.New("otp: email required")

// Code space: 6-digit numeric, uniform over [100000, 999999].
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Policy controls ledger behavior that deployments may want to change.
type Policy struct {
	// ResetAttemptsOnIssue clears the failed-attempt counter when a new
	// code is issued. Default false: counters persist across re-issues.
	ResetAttemptsOnIssue bool
}

// Result is the outcome of one verification attempt.
type Result struct {
	OK       bool
	Attempts int // failed attempts recorded for this email, after this call
}

type session struct {
	code     string
	attempts int
}

// Ledger stores outstanding codes and failed-attempt counters per email.
// All methods are safe for concurrent use; counter updates are atomic
// per email under the ledger mutex (no lost increments).
type Ledger struct {
	mu       sync.Mutex
	sessions map[string]*session
	policy   Policy
}

// New creates a ledger with the default policy.
func New() *Ledger {
	return NewWithPolicy(Policy{})
}

// NewWithPolicy creates a ledger with the given policy.
func NewWithPolicy(p Policy) *Ledger {
	return &Ledger{
		sessions: make(map[string]*session),
		policy:   p,
	}
}

// Issue generates a fresh 6-digit code for the email, replacing any prior
// outstanding code. The attempt counter is left alone unless the policy
// says otherwise.
func (l *Ledger) Issue(email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[email]
	if !ok {
		s = &session{}
		l.sessions[email] = s
	}
	s.code = code
	if l.policy.ResetAttemptsOnIssue {
		s.attempts = 0
	}
	return code, nil
}

// Verify compares the submitted code against the outstanding code for the
// email. A missing session compares as a mismatch, not an error. On
// mismatch the attempt counter is incremented and the updated count
// returned; on match the counter and the outstanding code are left
// untouched (call Invalidate for one-time-use semantics).
func (l *Ledger) Verify(email, submitted string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[email]
	if !ok {
		s = &session{}
		l.sessions[email] = s
	}

	if s.code == "" || s.code != submitted {
		s.attempts++
		return Result{OK: false, Attempts: s.attempts}
	}
	return Result{OK: true, Attempts: s.attempts}
}

// Attempts returns the current failed-attempt count for the email.
func (l *Ledger) Attempts(email string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.sessions[email]; ok {
		return s.attempts
	}
	return 0
}

// Invalidate clears the outstanding code for the email. The attempt
// counter is preserved.
func (l *Ledger) Invalidate(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.sessions[email]; ok {
		s.code = ""
	}
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", codeMin+n.Int64()), nil
}
