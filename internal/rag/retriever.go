package rag

import (
	"context"

	"github.com/docuserve/docintel/internal/embedding"
	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/vectorstore"
)

// VectorRetriever embeds the question and queries the scope's collection
// with diversity-aware selection.
type VectorRetriever struct {
	embedder  *embedding.Embedder
	index     *vectorstore.Index
	topK      int
	fetchPool int
	lambda    float64
}

// NewVectorRetriever builds the production retriever. topK and fetchPool
// fall back to 5 and 20 when non-positive.
func NewVectorRetriever(embedder *embedding.Embedder, index *vectorstore.Index, topK, fetchPool int, lambda float64) *VectorRetriever {
	if topK <= 0 {
		topK = 5
	}
	if fetchPool < topK {
		fetchPool = 4 * topK
	}
	if lambda <= 0 || lambda > 1 {
		lambda = 0.5
	}
	return &VectorRetriever{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		fetchPool: fetchPool,
		lambda:    lambda,
	}
}

// Retrieve returns the most relevant chunks for the question within only
// the given scope.
func (r *VectorRetriever) Retrieve(ctx context.Context, sc scope.Scope, question string) ([]vectorstore.ScoredChunk, error) {
	queryVec, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	return r.index.Query(ctx, sc, queryVec, r.topK, r.fetchPool, r.lambda)
}
