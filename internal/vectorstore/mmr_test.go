package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestMMR_FirstPickIsMostRelevant(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},          // orthogonal
		{1, 0.1},        // near-aligned
		{0.5, 0.5},      // diagonal
	}
	got := maximalMarginalRelevance(query, candidates, 0.5, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0])
}

// With a pool of near-duplicates plus one distinct candidate, diversity
// re-ranking must pick the distinct one second instead of a duplicate.
func TestMMR_PrefersDiversity(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{1, 0.2},  // best match
		{1, 0.2},  // exact duplicate of it
		{1, -0.2}, // equally relevant but diverse
	}
	got := maximalMarginalRelevance(query, candidates, 0.5, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0])
	assert.Equal(t, 2, got[1])
}

func TestMMR_LambdaOneIsPureRelevance(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0.9, 0.1},
		{1, 0},
		{0.95, 0.05},
	}
	got := maximalMarginalRelevance(query, candidates, 1.0, 3)
	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestMMR_PoolExhaustion(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}
	got := maximalMarginalRelevance(query, candidates, 0.5, 10)
	assert.Len(t, got, 2)

	assert.Nil(t, maximalMarginalRelevance(query, nil, 0.5, 5))
	assert.Nil(t, maximalMarginalRelevance(query, candidates, 0.5, 0))
}

func TestMMR_Deterministic(t *testing.T) {
	query := []float32{0.3, 0.7, 0.1}
	candidates := [][]float32{
		{0.3, 0.7, 0.1},
		{0.1, 0.9, 0.2},
		{0.8, 0.1, 0.4},
		{0.2, 0.6, 0.3},
	}
	a := maximalMarginalRelevance(query, candidates, 0.5, 3)
	b := maximalMarginalRelevance(query, candidates, 0.5, 3)
	assert.Equal(t, a, b)
}
