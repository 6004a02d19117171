package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

func TestMockStoreListInsightsMergesSeedAndInserted(t *testing.T) {
	store := NewMockStore()
	ctx := context.Background()

	store.Insights = []types.InsightRecord{
		{ID: "seed-1", UserID: "user-1"},
		{ID: "seed-2", UserID: "user-1"},
		{ID: "other", UserID: "user-2"},
	}

	records, err := store.ListInsights(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "seed-1", records[0].ID)

	require.NoError(t, store.InsertInsight(ctx, &types.InsightRecord{ID: "new-1", UserID: "user-1"}))
	require.NoError(t, store.InsertInsight(ctx, &types.InsightRecord{ID: "new-2", UserID: "user-1"}))

	records, err = store.ListInsights(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 4)
	// Runtime writes come back first, newest first, then the seed
	assert.Equal(t, []string{"new-2", "new-1", "seed-1", "seed-2"},
		[]string{records[0].ID, records[1].ID, records[2].ID, records[3].ID})

	records, err = store.ListInsights(ctx, "user-1", 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
