package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

func snap(to string) Snapshot {
	return New("2025-01-01", to, nil, recommendation.Comparison{
		RuleCounts: recommendation.CategoryCounts{recommendation.CategoryBuy: 1},
		MLCounts:   recommendation.CategoryCounts{recommendation.CategoryHold: 1},
		Conflicts:  []recommendation.Conflict{{ProductID: 1}},
		Matched:    1,
	}, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))
}

func TestNew_SummarizesComparison(t *testing.T) {
	s := snap("2025-01-31")
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, 1, s.Matched)
	assert.Equal(t, 1, s.Conflicts)
	assert.Equal(t, 1, s.RuleCounts[recommendation.CategoryBuy])
}

func TestInMemoryRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(10)
	for _, to := range []string{"2025-01-10", "2025-01-11", "2025-01-12"} {
		require.NoError(t, repo.Save(ctx, snap(to)))
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-12", got[0].To)
	assert.Equal(t, "2025-01-11", got[1].To)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryRepository_DropsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(2)
	for _, to := range []string{"2025-01-10", "2025-01-11", "2025-01-12"} {
		require.NoError(t, repo.Save(ctx, snap(to)))
	}

	got, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-12", got[0].To)
	assert.Equal(t, "2025-01-11", got[1].To)
}

func TestInMemoryRepository_Empty(t *testing.T) {
	got, err := NewInMemoryRepository(5).List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
