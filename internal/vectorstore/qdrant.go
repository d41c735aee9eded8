// Package vectorstore keeps one similarity-searchable qdrant collection
// per tenant scope and answers top-k queries with diversity re-ranking.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"

	"github.com/docuserve/docintel/internal/scope"
)

// upsertBatchSize bounds points per upsert call.
const upsertBatchSize = 100

// Index wraps the qdrant client with per-scope collection management.
// Isolation holds at two levels: each scope owns its own collection, and
// every stored point carries its scope identifier in the payload, which
// queries re-assert with an exact match filter.
type Index struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewIndex creates a qdrant-backed index and validates connectivity with a
// retried health check, failing fast if qdrant is unreachable.
func NewIndex(host string, port int) (*Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	idx := &Index{
		client: client,
		host:   host,
		port:   port,
	}

	if err := idx.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}

	return idx, nil
}

// healthCheckWithRetry performs health checks with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (x *Index) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return x.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against qdrant.
func (x *Index) Health(ctx context.Context) error {
	result, err := x.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// Close closes the qdrant client connection.
func (x *Index) Close() error {
	if x.client != nil {
		return x.client.Close()
	}
	return nil
}

// ensureCollection creates the scope's collection and payload indexes if
// they do not exist. Idempotent.
func (x *Index) ensureCollection(ctx context.Context, sc scope.Scope) error {
	name := sc.CollectionID()

	exists, err := x.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}
	if exists {
		return nil
	}

	err = x.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     VectorDimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: create collection %s: %v", ErrCollectionUnavailable, name, err)
	}

	// Payload indexes keep the exact-match filters fast.
	for _, field := range []string{"scope_id", "parent_id"} {
		_, err := x.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("%w: index field %s: %v", ErrCollectionUnavailable, field, err)
		}
	}
	return nil
}

// InsertChunks stores a document's chunks in the scope's collection as a
// single logical batch. On any failure after the first write, every point
// already written for the batch's parent id is rolled back so concurrent
// readers never observe a partially inserted document.
func (x *Index) InsertChunks(ctx context.Context, sc scope.Scope, records []ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	scopeID := sc.CollectionID()
	for i, rec := range records {
		if len(rec.Embedding) != VectorDimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(rec.Embedding), VectorDimension)
		}
		if rec.ScopeID != scopeID {
			return fmt.Errorf("chunk %d tagged for scope %q, inserting into %q", i, rec.ScopeID, scopeID)
		}
	}

	if err := x.ensureCollection(ctx, sc); err != nil {
		return err
	}

	parentID := records[0].ParentID
	for i := 0; i < len(records); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(records))
		batch := records[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, rec := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(rec.ID),
				Vectors: qdrant.NewVectors(rec.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"scope_id":  rec.ScopeID,
					"parent_id": rec.ParentID,
					"ordinal":   rec.Ordinal,
					"source":    rec.Source,
					"text":      rec.Text,
				}),
			}
		}

		if err := x.upsertWithRetry(ctx, scopeID, points); err != nil {
			x.rollback(sc, parentID)
			return fmt.Errorf("%w: upsert batch %d-%d: %v", ErrCollectionUnavailable, i, end, err)
		}
	}

	return nil
}

// upsertWithRetry performs an upsert with exponential backoff.
func (x *Index) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := x.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// rollback deletes every point of an aborted upload. Best effort on a
// fresh context: the caller's context may already be cancelled, which is
// exactly when rollback matters most.
func (x *Index) rollback(sc scope.Scope, parentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = x.DeleteByParent(ctx, sc, parentID)
}

// DeleteByParent removes all chunks of one document from the scope's
// collection as an atomic set.
func (x *Index) DeleteByParent(ctx context.Context, sc scope.Scope, parentID string) error {
	name := sc.CollectionID()

	exists, err := x.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}
	if !exists {
		return nil
	}

	_, err = x.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: name,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("parent_id", parentID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: delete parent %s: %v", ErrCollectionUnavailable, parentID, err)
	}
	return nil
}

// Query returns the k chunks most relevant to the query embedding within
// only the given scope's collection: the fetchPool nearest candidates by
// cosine similarity are re-ranked with maximal marginal relevance so the
// result is not k near-duplicates. A scope whose collection has never been
// created is a valid empty result, not an error.
func (x *Index) Query(ctx context.Context, sc scope.Scope, queryVec []float32, k, fetchPool int, lambda float64) ([]ScoredChunk, error) {
	if len(queryVec) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(queryVec), VectorDimension)
	}
	if fetchPool < k {
		fetchPool = k
	}

	name := sc.CollectionID()
	exists, err := x.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
	}
	if !exists {
		return nil, nil
	}

	// Collection identifiers are matched exactly via collection selection;
	// the payload filter re-asserts scope ownership on every point.
	results, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(queryVec...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("scope_id", name),
			},
		},
		Limit:       qdrant.PtrOf(uint64(fetchPool)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(true), // needed for diversity re-ranking
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrCollectionUnavailable, name, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	candidates := make([]ScoredChunk, 0, len(results))
	vectors := make([][]float32, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		candidates = append(candidates, ScoredChunk{
			ChunkRecord: ChunkRecord{
				ID:       result.Id.GetUuid(),
				ScopeID:  payload["scope_id"].GetStringValue(),
				ParentID: payload["parent_id"].GetStringValue(),
				Ordinal:  int(payload["ordinal"].GetIntegerValue()),
				Source:   payload["source"].GetStringValue(),
				Text:     payload["text"].GetStringValue(),
			},
			Score: result.Score,
		})
		vectors = append(vectors, result.Vectors.GetVector().GetData())
	}

	picked := maximalMarginalRelevance(queryVec, vectors, lambda, k)
	selected := make([]ScoredChunk, 0, len(picked))
	for _, i := range picked {
		selected = append(selected, candidates[i])
	}
	return selected, nil
}
