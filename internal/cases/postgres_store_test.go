package cases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustgate/trustgate/internal/risk"
	"github.com/trustgate/trustgate/internal/testutil"
)

func TestPostgresStore_CRUD(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	c := &Case{
		ID:    "case_abc123",
		Email: "marek@corp.example",
		Assessment: risk.Assessment{
			Score:      60,
			TrustIndex: 40,
			Tier:       risk.TierMedium,
			Decision:   risk.DecisionEDD,
			Status:     risk.StatusPending,
			Signals:    []string{"Blacklisted ID detected"},
		},
		ReviewStatus: risk.ReviewUnderManual,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Upsert(ctx, c))

	got, err := store.Get(ctx, "marek@corp.example")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Assessment.Score, got.Assessment.Score)
	assert.Equal(t, risk.ReviewUnderManual, got.ReviewStatus)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))

	// Upsert replaces the prior case for the same email.
	c2 := *c
	c2.ID = "case_def456"
	c2.Assessment.Score = 95
	c2.Assessment.Tier = risk.TierHigh
	c2.ReviewStatus = risk.ReviewAwaitingCompliance
	require.NoError(t, store.Upsert(ctx, &c2))

	got, err = store.Get(ctx, "marek@corp.example")
	require.NoError(t, err)
	assert.Equal(t, "case_def456", got.ID)
	assert.Equal(t, 95, got.Assessment.Score)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.SetReviewStatus(ctx, "marek@corp.example", "Approved"))
	got, err = store.Get(ctx, "marek@corp.example")
	require.NoError(t, err)
	assert.Equal(t, "Approved", got.ReviewStatus)
}

func TestPostgresStore_ListSurfacesScanError(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	// Force a row the scanner cannot read. A silently dropped row would
	// make the admin case list lie about what is escalated.
	_, err := db.ExecContext(ctx, `ALTER TABLE escalated_cases ALTER COLUMN review_status DROP NOT NULL`)
	require.NoError(t, err)
	defer func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM escalated_cases WHERE email = 'broken@corp.example'`)
		_, _ = db.ExecContext(ctx, `ALTER TABLE escalated_cases ALTER COLUMN review_status SET NOT NULL`)
	}()
	_, err = db.ExecContext(ctx, `
		INSERT INTO escalated_cases (email, case_id, assessment, review_status)
		VALUES ('broken@corp.example', 'case_broken', '{}'::jsonb, NULL)
	`)
	require.NoError(t, err)

	_, err = store.List(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan case")
}

func TestPostgresStore_NotFound(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	_, err := store.Get(ctx, "nobody@corp.example")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.SetReviewStatus(ctx, "nobody@corp.example", "Approved")
	assert.ErrorIs(t, err, ErrNotFound)
}
