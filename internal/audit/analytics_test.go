package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustgate/trustgate/internal/risk"
)

func entry(email string, score int, tier risk.Tier, decision risk.Decision) *Entry {
	return &Entry{
		ID:         "aud_" + email,
		Email:      email,
		Timestamp:  time.Now(),
		Score:      score,
		TrustIndex: 100 - score,
		Tier:       tier,
		Decision:   decision,
	}
}

func TestSummarize_EmptyLog(t *testing.T) {
	s, err := Summarize(context.Background(), NewMemoryStore())
	require.NoError(t, err)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Approved)
	assert.Equal(t, 0, s.MediumRisk)
	assert.Equal(t, 0, s.HighRisk)
	assert.Equal(t, 0.0, s.AverageScore)
}

func TestSummarize_CountsAndAverage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, entry("a@b.com", 20, risk.TierLow, risk.DecisionApproved)))
	require.NoError(t, store.Append(ctx, entry("c@d.com", 0, risk.TierLow, risk.DecisionApproved)))
	require.NoError(t, store.Append(ctx, entry("e@f.com", 60, risk.TierMedium, risk.DecisionEDD)))
	require.NoError(t, store.Append(ctx, entry("g@h.com", 95, risk.TierHigh, risk.DecisionBlocked)))

	s, err := Summarize(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Approved)
	assert.Equal(t, 1, s.MediumRisk)
	assert.Equal(t, 1, s.HighRisk)
	assert.Equal(t, 43.75, s.AverageScore)
}

func TestSummarize_RoundsToTwoDecimals(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// 20 + 20 + 25 = 65 over 3 → 21.666... → 21.67
	require.NoError(t, store.Append(ctx, entry("a@b.com", 20, risk.TierLow, risk.DecisionApproved)))
	require.NoError(t, store.Append(ctx, entry("c@d.com", 20, risk.TierLow, risk.DecisionApproved)))
	require.NoError(t, store.Append(ctx, entry("e@f.com", 25, risk.TierLow, risk.DecisionApproved)))

	s, err := Summarize(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 21.67, s.AverageScore)
}
