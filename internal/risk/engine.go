package risk

import (
	"strings"
	"time"
)

// Signal point values and trigger thresholds. The checklist is fixed: every
// signal is evaluated on every run, in table order, with no short-circuit,
// so the signal list in an assessment is deterministic.
const (
	pointsInvalidIDFormat = 25
	pointsBlacklistedID   = 60
	pointsSanctionsMatch  = 50
	pointsDisposableEmail = 20
	pointsHighRiskGeo     = 25
	pointsDomainCluster   = 25
	pointsOTPFailures     = 30
	pointsHighVelocity    = 30

	idNumberLength     = 10
	clusterThreshold   = 3 // domain count above this fires
	otpFailThreshold   = 3
	velocityThreshold  = 5
	maxScore           = 100
	tierLowUpperBound  = 40 // inclusive
	tierMedUpperBound  = 70 // inclusive
	confidenceFloor    = 50
	noSignalsExplained = "All verification checks passed successfully."
)

// Names that count as a sanctions match in the illustrative AML check.
var sanctionedNames = map[string]struct{}{
	"fraud":       {},
	"blacklisted": {},
}

// check is one row of the signal table.
type check struct {
	label      string
	points     int
	suspicious bool
	applies    func(in normalized, r Readings) bool
}

// normalized is Input after trimming and case folding.
type normalized struct {
	email    string // lowercased
	name     string // trimmed, lowercased
	idNumber string // trimmed
	country  string // trimmed, lowercased
}

// Evaluator scores onboarding profiles against a fixed signal checklist.
// It is stateless apart from the injected policy; Evaluate is a pure
// function of its arguments and safe for concurrent use.
type Evaluator struct {
	policy Policy
	checks []check
}

// NewEvaluator creates an evaluator with the given policy data.
func NewEvaluator(policy Policy) *Evaluator {
	e := &Evaluator{policy: policy}
	e.checks = []check{
		{
			label:  "Invalid ID format",
			points: pointsInvalidIDFormat,
			applies: func(in normalized, _ Readings) bool {
				return len(in.idNumber) != idNumberLength
			},
		},
		{
			label:  "Blacklisted ID detected",
			points: pointsBlacklistedID,
			applies: func(in normalized, _ Readings) bool {
				return e.policy.IsBlacklistedID(in.idNumber)
			},
		},
		{
			label:  "Sanctions match",
			points: pointsSanctionsMatch,
			applies: func(in normalized, _ Readings) bool {
				_, ok := sanctionedNames[in.name]
				return ok
			},
		},
		{
			label:  "Disposable email detected",
			points: pointsDisposableEmail,
			applies: func(in normalized, _ Readings) bool {
				return strings.Contains(in.email, "tempmail") || strings.Contains(in.email, "fake")
			},
		},
		{
			label:  "High-risk geography",
			points: pointsHighRiskGeo,
			applies: func(in normalized, _ Readings) bool {
				return !e.policy.IsLowRiskCountry(in.country)
			},
		},
		{
			label:      "Domain clustering detected",
			points:     pointsDomainCluster,
			suspicious: true,
			applies: func(_ normalized, r Readings) bool {
				return r.DomainCount > clusterThreshold
			},
		},
		{
			label:      "Multiple OTP failures",
			points:     pointsOTPFailures,
			suspicious: true,
			applies: func(_ normalized, r Readings) bool {
				return r.OTPAttempts > otpFailThreshold
			},
		},
		{
			label:      "High onboarding velocity detected",
			points:     pointsHighVelocity,
			suspicious: true,
			applies: func(_ normalized, r Readings) bool {
				return r.RecentSubmissions > velocityThreshold
			},
		},
	}
	return e
}

// Evaluate scores a profile against the current tracker readings.
// Re-running with identical inputs yields an identical assessment
// (modulo EvaluatedAt).
func (e *Evaluator) Evaluate(in Input, r Readings) Assessment {
	n := normalized{
		email:    strings.ToLower(in.Email),
		name:     strings.ToLower(strings.TrimSpace(in.Name)),
		idNumber: strings.TrimSpace(in.IDNumber),
		country:  strings.ToLower(strings.TrimSpace(in.Country)),
	}

	score := 0
	suspicious := false
	signals := make([]string, 0, len(e.checks))
	for _, c := range e.checks {
		if !c.applies(n, r) {
			continue
		}
		score += c.points
		signals = append(signals, c.label)
		if c.suspicious {
			suspicious = true
		}
	}

	if score > maxScore {
		score = maxScore
	}

	a := Assessment{
		Score:       score,
		TrustIndex:  maxScore - score,
		Confidence:  confidence(score),
		Signals:     signals,
		Suspicious:  suspicious,
		Explanation: explain(signals),
		EvaluatedAt: time.Now().UTC(),
	}

	a.Tier, a.Decision, a.Status = Classify(score)

	return a
}

// Classify maps a clamped score to its tier, decision, and account status.
// The bands are inclusive on their upper bound and cover [0,100] with no
// gaps or overlap.
func Classify(score int) (Tier, Decision, AccountStatus) {
	switch {
	case score <= tierLowUpperBound:
		return TierLow, DecisionApproved, StatusActivated
	case score <= tierMedUpperBound:
		return TierMedium, DecisionEDD, StatusPending
	default:
		return TierHigh, DecisionBlocked, StatusBlocked
	}
}

// confidence = max(50, 100 - score/2), integer truncation.
func confidence(score int) int {
	c := maxScore - score/2
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}

func explain(signals []string) string {
	if len(signals) == 0 {
		return noSignalsExplained
	}
	return "Trust reduced due to: " + strings.Join(signals, ", ")
}
