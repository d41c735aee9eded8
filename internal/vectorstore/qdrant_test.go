//go:build integration

package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuserve/docintel/internal/scope"
)

// setupTestIndex connects to a local qdrant, skipping if unavailable.
func setupTestIndex(t *testing.T) *Index {
	idx, err := NewIndex("localhost", 6334)
	if err != nil {
		t.Skipf("qdrant not available: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func fakeEmbedding(seed float32) []float32 {
	v := make([]float32, VectorDimension)
	for i := range v {
		v[i] = seed
	}
	v[0] = 1 // keep a stable dominant axis so cosine stays well defined
	return v
}

func makeRecords(sc scope.Scope, parentID string, n int, seed float32) []ChunkRecord {
	records := make([]ChunkRecord, n)
	for i := range records {
		records[i] = ChunkRecord{
			ID:        uuid.NewString(),
			ScopeID:   sc.CollectionID(),
			ParentID:  parentID,
			Ordinal:   i,
			Source:    "test.pdf",
			Text:      "chunk text",
			Embedding: fakeEmbedding(seed),
		}
	}
	return records
}

// Chunks inserted under one scope must never surface in a sibling scope's
// query, even when both scopes share the company.
func TestQuery_ScopeIsolation(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	companyID := int64(uuid.New().ID()) // unique per run
	companyScope := scope.Company(companyID)
	teamScope := scope.Team(companyID, 1)

	companyParent := uuid.NewString()
	teamParent := uuid.NewString()

	require.NoError(t, idx.InsertChunks(ctx, companyScope, makeRecords(companyScope, companyParent, 7, 0.1)))
	require.NoError(t, idx.InsertChunks(ctx, teamScope, makeRecords(teamScope, teamParent, 2, 0.1)))

	got, err := idx.Query(ctx, teamScope, fakeEmbedding(0.1), 5, 20, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, teamParent, c.ParentID)
		assert.Equal(t, teamScope.CollectionID(), c.ScopeID)
	}
}

// A scope with no collection is an empty result, not an error.
func TestQuery_EmptyScope(t *testing.T) {
	idx := setupTestIndex(t)

	got, err := idx.Query(context.Background(), scope.Company(int64(uuid.New().ID())), fakeEmbedding(0.2), 5, 20, 0.5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteByParent_RemovesWholeDocument(t *testing.T) {
	idx := setupTestIndex(t)
	ctx := context.Background()

	sc := scope.Company(int64(uuid.New().ID()))
	parent := uuid.NewString()
	keep := uuid.NewString()

	require.NoError(t, idx.InsertChunks(ctx, sc, makeRecords(sc, parent, 5, 0.1)))
	require.NoError(t, idx.InsertChunks(ctx, sc, makeRecords(sc, keep, 3, 0.1)))

	require.NoError(t, idx.DeleteByParent(ctx, sc, parent))

	got, err := idx.Query(ctx, sc, fakeEmbedding(0.1), 10, 20, 0.5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, keep, c.ParentID)
	}
}

func TestInsertChunks_RejectsWrongDimension(t *testing.T) {
	idx := setupTestIndex(t)
	sc := scope.Company(int64(uuid.New().ID()))

	records := makeRecords(sc, uuid.NewString(), 1, 0.1)
	records[0].Embedding = []float32{1, 2, 3}

	err := idx.InsertChunks(context.Background(), sc, records)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
