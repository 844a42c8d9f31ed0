package audit

import (
	"context"
	"math"

	"github.com/trustgate/trustgate/internal/risk"
)

// Summary aggregates the audit log for the admin analytics view.
type Summary struct {
	Total        int     `json:"total_applications"`
	Approved     int     `json:"approved"`
	MediumRisk   int     `json:"medium_risk"`
	HighRisk     int     `json:"high_risk"`
	AverageScore float64 `json:"average_risk_score"`
}

// Summarize computes counts and the mean risk score over the full log.
// AverageScore is rounded to 2 decimal places and is 0 for an empty log.
func Summarize(ctx context.Context, store Store) (*Summary, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

func summarize(entries []*Entry) *Summary {
	s := &Summary{Total: len(entries)}
	if s.Total == 0 {
		return s
	}

	sum := 0
	for _, e := range entries {
		sum += e.Score
		if e.Decision == risk.DecisionApproved {
			s.Approved++
		}
		if e.Tier == risk.TierMedium {
			s.MediumRisk++
		}
		if e.Tier == risk.TierHigh {
			s.HighRisk++
		}
	}

	avg := float64(sum) / float64(s.Total)
	s.AverageScore = math.Round(avg*100) / 100
	return s
}
