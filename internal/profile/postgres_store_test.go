package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustgate/trustgate/internal/testutil"
)

func TestPostgresStore_PutGet(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	p := &Profile{
		Email:       "asha@corp.example",
		Name:        "Asha Patel",
		IDNumber:    "ZXCV123456",
		Country:     "India",
		Extra:       map[string]string{"referrer": "partner-site"},
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Put(ctx, p))

	got, err := store.Get(ctx, "asha@corp.example")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.IDNumber, got.IDNumber)
	assert.Equal(t, "partner-site", got.Extra["referrer"])

	// Last write wins, nothing merges.
	p2 := &Profile{
		Email:       "asha@corp.example",
		Name:        "A. Patel",
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Put(ctx, p2))

	got, err = store.Get(ctx, "asha@corp.example")
	require.NoError(t, err)
	assert.Equal(t, "A. Patel", got.Name)
	assert.Empty(t, got.IDNumber)
	assert.Empty(t, got.Extra)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	_, err := store.Get(context.Background(), "nobody@corp.example")
	assert.ErrorIs(t, err, ErrNotFound)
}
