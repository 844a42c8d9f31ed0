package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustgate/trustgate/internal/risk"
)

func TestMemoryStore_AppendOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := entry(fmt.Sprintf("u%d@b.com", i), i*10, risk.TierLow, risk.DecisionApproved)
		require.NoError(t, store.Append(ctx, e))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, e := range list {
		assert.Equal(t, fmt.Sprintf("u%d@b.com", i), e.Email)
	}
}

func TestMemoryStore_ListIsRestartable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, entry("a@b.com", 10, risk.TierLow, risk.DecisionApproved)))

	first, err := store.List(ctx)
	require.NoError(t, err)
	second, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))

	// Snapshot copies: mutating a returned entry leaves the log untouched.
	first[0].Score = 999
	again, _ := store.List(ctx)
	assert.Equal(t, 10, again[0].Score)
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, entry(fmt.Sprintf("u%d@b.com", i), 10, risk.TierLow, risk.DecisionApproved))
		}()
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, n, "no entries dropped under concurrent appends")
}
