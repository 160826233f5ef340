package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shun-123/shadowverse-2pick/internal/advisor"
)

func TestWeightsRepositoryDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeightsRepository(db)

	weights, err := repo.GetWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, advisor.DefaultWeights(), weights)
}

func TestWeightsRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeightsRepository(db)
	ctx := context.Background()

	custom := advisor.Weights{
		advisor.FactorBase:        1.4,
		advisor.FactorCurve:       0.8,
		advisor.FactorRole:        1.0,
		advisor.FactorDuplication: 2.1,
		advisor.FactorSynergy:     0.1,
		advisor.FactorArchetype:   3.0,
		advisor.FactorMeta:        0.5,
	}
	require.NoError(t, repo.SetWeights(ctx, custom))

	got, err := repo.GetWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, got, "mapping preserved exactly")

	// A second write replaces the first.
	custom[advisor.FactorBase] = 0.9
	require.NoError(t, repo.SetWeights(ctx, custom))
	got, err = repo.GetWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got[advisor.FactorBase])
}

func TestWeightsRepositoryReset(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeightsRepository(db)
	ctx := context.Background()

	custom := advisor.DefaultWeights()
	custom[advisor.FactorSynergy] = 2.5
	require.NoError(t, repo.SetWeights(ctx, custom))
	require.NoError(t, repo.Reset(ctx))

	got, err := repo.GetWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, advisor.DefaultWeights(), got)
}
