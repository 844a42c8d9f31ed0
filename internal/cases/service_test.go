package cases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustgate/trustgate/internal/risk"
)

func mediumAssessment() risk.Assessment {
	return risk.Assessment{
		Score:      60,
		TrustIndex: 40,
		Tier:       risk.TierMedium,
		Decision:   risk.DecisionEDD,
		Status:     risk.StatusPending,
		Signals:    []string{"Blacklisted ID detected"},
	}
}

func TestEscalate_CreatesCase(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	c, err := svc.Escalate(ctx, "a@b.com", mediumAssessment())
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Under Manual Review", c.ReviewStatus)
	assert.False(t, c.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 60, got.Assessment.Score)
}

func TestEscalate_OverwritesPriorCase(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Escalate(ctx, "a@b.com", mediumAssessment())
	require.NoError(t, err)

	high := mediumAssessment()
	high.Score, high.Tier = 85, risk.TierHigh
	_, err = svc.Escalate(ctx, "a@b.com", high)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 85, got.Assessment.Score)
	assert.Equal(t, "High Risk - Waiting Compliance Decision", got.ReviewStatus)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "one case per email")
}

func TestApplyDecision_Approved(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	_, err := svc.Escalate(ctx, "a@b.com", mediumAssessment())
	require.NoError(t, err)

	status, err := svc.ApplyDecision(ctx, "a@b.com", ParseAction("Approved"))
	require.NoError(t, err)
	assert.Equal(t, risk.StatusActivated, status)

	got, err := svc.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Approved", got.ReviewStatus, "literal action string persists")
}

func TestApplyDecision_AnythingElseBlocks(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	_, err := svc.Escalate(ctx, "a@b.com", mediumAssessment())
	require.NoError(t, err)

	status, err := svc.ApplyDecision(ctx, "a@b.com", ParseAction("Denied"))
	require.NoError(t, err)
	assert.Equal(t, risk.StatusBlocked, status)
}

func TestApplyDecision_UnknownEmail(t *testing.T) {
	svc := NewService(NewMemoryStore())

	_, err := svc.ApplyDecision(context.Background(), "ghost@b.com", ActionApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionApproved, ParseAction("Approved"))
	assert.Equal(t, ActionRejected, ParseAction("approved"), "only the exact literal approves")
	assert.Equal(t, ActionRejected, ParseAction("Reject"))
	assert.Equal(t, ActionRejected, ParseAction(""))
}

func TestList_Snapshot(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()
	_, _ = svc.Escalate(ctx, "a@b.com", mediumAssessment())

	snap, err := svc.List(ctx)
	require.NoError(t, err)

	// Mutating the snapshot must not touch the store.
	snap["a@b.com"].ReviewStatus = "tampered"
	got, _ := svc.Get(ctx, "a@b.com")
	assert.Equal(t, "Under Manual Review", got.ReviewStatus)
}
