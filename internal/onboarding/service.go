// Package onboarding wires the trackers, risk evaluator, case ledger, and
// audit log into the applicant-facing flow: submit a profile, confirm the
// OTP, get scored, and get routed.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	otelcodes "go.opentelemetry.io/otel/codes"

	"github.com/trustgate/trustgate/internal/audit"
	"github.com/trustgate/trustgate/internal/cases"
	"github.com/trustgate/trustgate/internal/cluster"
	"github.com/trustgate/trustgate/internal/idgen"
	"github.com/trustgate/trustgate/internal/metrics"
	"github.com/trustgate/trustgate/internal/otp"
	"github.com/trustgate/trustgate/internal/profile"
	"github.com/trustgate/trustgate/internal/risk"
	"github.com/trustgate/trustgate/internal/syncutil"
	"github.com/trustgate/trustgate/internal/traces"
	"github.com/trustgate/trustgate/internal/velocity"
)

// ErrEmailRequired is returned when a request is missing the email key.
// Nothing is mutated before this check.
var ErrEmailRequired = errors.New("onboarding: email required")

// DefaultVelocityWindow is the trailing window the velocity signal reads.
const DefaultVelocityWindow = 60 * time.Second

// EventEmitter receives lifecycle events for real-time streaming. All
// methods must be non-blocking.
type EventEmitter interface {
	EvaluationCompleted(email string, a risk.Assessment)
	CaseEscalated(c *cases.Case)
	CaseDecided(email string, action cases.Action, final risk.AccountStatus)
}

// Submission is one profile submission.
type Submission struct {
	Email    string
	Name     string
	IDNumber string
	Country  string
	Extra    map[string]string
}

// Outcome is the result of one verify call. When Verified is false only
// Attempts is set; escalation and audit happen exclusively on success.
type Outcome struct {
	Verified   bool
	Attempts   int
	Assessment *risk.Assessment
	AuditEntry *audit.Entry
	Case       *cases.Case // nil unless the tier escalates
}

// Service runs the onboarding pipeline against explicitly injected state.
type Service struct {
	profiles  profile.Store
	codes     *otp.Ledger
	velocity  *velocity.Tracker
	domains   *cluster.Tracker
	evaluator *risk.Evaluator
	cases     *cases.Service
	auditLog  audit.Store
	window    time.Duration
	keyLocks  syncutil.ShardedMutex
	logger    *slog.Logger
	events    EventEmitter
	now       func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEvents sets a real-time event emitter.
func WithEvents(e EventEmitter) Option {
	return func(s *Service) { s.events = e }
}

// WithVelocityWindow overrides the trailing window the velocity signal reads.
func WithVelocityWindow(w time.Duration) Option {
	return func(s *Service) { s.window = w }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the onboarding service.
func NewService(
	profiles profile.Store,
	codes *otp.Ledger,
	vel *velocity.Tracker,
	domains *cluster.Tracker,
	evaluator *risk.Evaluator,
	caseSvc *cases.Service,
	auditLog audit.Store,
	opts ...Option,
) *Service {
	s := &Service{
		profiles:  profiles,
		codes:     codes,
		velocity:  vel,
		domains:   domains,
		evaluator: evaluator,
		cases:     caseSvc,
		auditLog:  auditLog,
		window:    DefaultVelocityWindow,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitProfile stores the profile (last write wins by email), issues a
// fresh OTP, and feeds the velocity and domain trackers. The code is never
// returned to the caller; delivery is a transport concern.
func (s *Service) SubmitProfile(ctx context.Context, sub Submission) error {
	if sub.Email == "" {
		return ErrEmailRequired
	}

	ctx, span := traces.StartSpan(ctx, "onboarding.SubmitProfile", traces.Email(sub.Email))
	defer span.End()

	now := s.now()
	if err := s.profiles.Put(ctx, &profile.Profile{
		Email:       sub.Email,
		Name:        sub.Name,
		IDNumber:    sub.IDNumber,
		Country:     sub.Country,
		Extra:       sub.Extra,
		SubmittedAt: now,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to store profile")
		return fmt.Errorf("store profile: %w", err)
	}

	code, err := s.codes.Issue(sub.Email)
	if err != nil {
		return err
	}

	domain := cluster.DomainOf(sub.Email)
	s.domains.Increment(domain)
	s.velocity.Record(now)

	metrics.ProfileSubmissionsTotal.Inc()
	metrics.OTPIssuedTotal.Inc()

	// Debug only: a real deployment delivers the code out of band.
	s.logger.Debug("otp issued", "email", sub.Email, "domain", domain, "code", code)
	return nil
}

// VerifyAndEvaluate checks the submitted code. On mismatch it returns the
// updated attempt count and touches nothing else. On match it runs the
// full pipeline: evaluate, escalate if the tier requires review, and
// append exactly one audit entry.
func (s *Service) VerifyAndEvaluate(ctx context.Context, email, code string) (*Outcome, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	ctx, span := traces.StartSpan(ctx, "onboarding.VerifyAndEvaluate", traces.Email(email))
	defer span.End()

	// Serialize per email so a pair of racing verifies can't double-write
	// the case or interleave case/audit updates.
	unlock := s.keyLocks.Lock(email)
	defer unlock()

	res := s.codes.Verify(email, code)
	if !res.OK {
		metrics.OTPVerificationsTotal.WithLabelValues("failed").Inc()
		s.logger.Info("otp mismatch", "email", email, "attempts", res.Attempts)
		return &Outcome{Verified: false, Attempts: res.Attempts}, nil
	}
	metrics.OTPVerificationsTotal.WithLabelValues("ok").Inc()

	in := risk.Input{Email: email}
	p, err := s.profiles.Get(ctx, email)
	switch {
	case err == nil:
		in.Name = p.Name
		in.IDNumber = p.IDNumber
		in.Country = p.Country
	case errors.Is(err, profile.ErrNotFound):
		// No profile on record evaluates over empty fields; the signals
		// absorb it. A store failure is not the same thing: scoring a
		// clean applicant on empty fields would fabricate signals.
	default:
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load profile")
		return nil, fmt.Errorf("load profile: %w", err)
	}

	now := s.now()
	readings := risk.Readings{
		OTPAttempts:       res.Attempts,
		DomainCount:       s.domains.Count(cluster.DomainOf(email)),
		RecentSubmissions: s.velocity.CountWithin(now, s.window),
	}
	a := s.evaluator.Evaluate(in, readings)
	span.SetAttributes(traces.Score(a.Score), traces.Tier(string(a.Tier)))

	out := &Outcome{Verified: true, Attempts: res.Attempts, Assessment: &a}

	if a.Escalates() {
		prior, err := s.cases.Get(ctx, email)
		if err != nil && !errors.Is(err, cases.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to load case")
			return nil, fmt.Errorf("load case: %w", err)
		}
		// A decided case re-opens here, so the gauge tracks open review
		// status, not row existence.
		hadOpen := err == nil && prior.Open()
		c, err := s.cases.Escalate(ctx, email, a)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to escalate case")
			return nil, fmt.Errorf("escalate case: %w", err)
		}
		out.Case = c
		if !hadOpen {
			metrics.EscalatedCasesOpen.Inc()
		}
		if s.events != nil {
			s.events.CaseEscalated(c)
		}
	}

	entry := &audit.Entry{
		ID:         idgen.WithPrefix("aud_"),
		Email:      email,
		Timestamp:  a.EvaluatedAt,
		Score:      a.Score,
		TrustIndex: a.TrustIndex,
		Tier:       a.Tier,
		Decision:   a.Decision,
		Signals:    a.Signals,
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to append audit entry")
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	out.AuditEntry = entry

	metrics.EvaluationsTotal.WithLabelValues(string(a.Tier)).Inc()
	metrics.EvaluationScore.Observe(float64(a.Score))
	if s.events != nil {
		s.events.EvaluationCompleted(email, a)
	}

	s.logger.Info("evaluation completed",
		"email", email,
		"score", a.Score,
		"tier", a.Tier,
		"decision", a.Decision,
		"signals", len(a.Signals),
	)
	return out, nil
}

// ListCases returns a snapshot of the escalated cases keyed by email.
func (s *Service) ListCases(ctx context.Context) (map[string]*cases.Case, error) {
	return s.cases.List(ctx)
}

// DecideCase applies a compliance decision to the email's case and returns
// the final account status. Unknown email → cases.ErrNotFound.
func (s *Service) DecideCase(ctx context.Context, email string, action cases.Action) (risk.AccountStatus, error) {
	ctx, span := traces.StartSpan(ctx, "onboarding.DecideCase", traces.Email(email))
	defer span.End()

	unlock := s.keyLocks.Lock(email)
	defer unlock()

	prior, err := s.cases.Get(ctx, email)
	if err != nil {
		return "", err
	}
	span.SetAttributes(traces.CaseID(prior.ID))
	wasOpen := prior.Open()

	final, err := s.cases.ApplyDecision(ctx, email, action)
	if err != nil {
		return "", err
	}

	metrics.CaseDecisionsTotal.WithLabelValues(string(action)).Inc()
	if wasOpen {
		metrics.EscalatedCasesOpen.Dec()
	}
	if s.events != nil {
		s.events.CaseDecided(email, action, final)
	}
	s.logger.Info("case decided", "email", email, "action", action, "final_status", final)
	return final, nil
}

// AuditTrail returns the full audit log in append order.
func (s *Service) AuditTrail(ctx context.Context) ([]*audit.Entry, error) {
	return s.auditLog.List(ctx)
}

// Analytics summarizes the audit log.
func (s *Service) Analytics(ctx context.Context) (*audit.Summary, error) {
	return audit.Summarize(ctx, s.auditLog)
}
