// Package risk implements onboarding risk scoring.
//
// Every verified profile submission is evaluated against a fixed checklist
// of fraud and compliance signals: document format, ID blacklist, sanctions
// name match, disposable email, geography, domain clustering, OTP failure
// pattern, and onboarding velocity. Each signal contributes a fixed number
// of points; the summed score (clamped to 0-100) maps to a risk tier that
// decides whether the applicant is approved, escalated for manual review,
// or blocked.
package risk

import "time"

// Tier classifies the clamped score into one of three bands.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// Decision is the routing outcome attached to a tier.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionEDD      Decision = "EDD REQUIRED"
	DecisionBlocked  Decision = "HIGH RISK - BLOCKED"
)

// AccountStatus is the account state implied by the decision.
type AccountStatus string

const (
	StatusActivated AccountStatus = "activated"
	StatusPending   AccountStatus = "pending"
	StatusBlocked   AccountStatus = "blocked"
)

// Review status literals used when a tier opens an escalated case.
const (
	ReviewUnderManual        = "Under Manual Review"
	ReviewAwaitingCompliance = "High Risk - Waiting Compliance Decision"
)

// Input is the profile slice the evaluator reads. Missing fields are empty
// strings, never errors; normalization happens inside Evaluate.
type Input struct {
	Email    string
	Name     string
	IDNumber string
	Country  string
}

// Readings carries the tracker counts sampled at evaluation time.
type Readings struct {
	OTPAttempts       int // failed verify count for this email
	DomainCount       int // submissions seen for the email's domain
	RecentSubmissions int // submissions inside the trailing velocity window
}

// Assessment is the immutable result of one evaluation.
type Assessment struct {
	Score       int           `json:"risk_score"`
	TrustIndex  int           `json:"trust_index"`
	Tier        Tier          `json:"risk_category"`
	Decision    Decision      `json:"decision"`
	Status      AccountStatus `json:"account_status"`
	Confidence  int           `json:"confidence_score"`
	Signals     []string      `json:"signals"`
	Suspicious  bool          `json:"suspicious"`
	Explanation string        `json:"explanation"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
}

// ReviewStatus returns the initial case review status for the assessment's
// tier, or "" when the tier does not open a case.
func (a *Assessment) ReviewStatus() string {
	switch a.Tier {
	case TierMedium:
		return ReviewUnderManual
	case TierHigh:
		return ReviewAwaitingCompliance
	}
	return ""
}

// Escalates reports whether the assessment requires an escalated case.
func (a *Assessment) Escalates() bool {
	return a.Tier == TierMedium || a.Tier == TierHigh
}
