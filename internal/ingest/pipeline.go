// Package ingest runs the upload pipeline: extract, name, chunk, embed,
// index, record. A document becomes visible only after every stage has
// succeeded.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuserve/docintel/internal/chunker"
	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
	"github.com/docuserve/docintel/internal/vectorstore"
)

// Extractor turns uploaded bytes into per-page text.
type Extractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// Namer derives a display name for the document, degrading to fallback.
type Namer interface {
	ExtractName(ctx context.Context, text, fallback string) string
}

// Embedder maps chunk texts to vectors, preserving order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores and removes a document's chunk vectors.
type VectorIndex interface {
	InsertChunks(ctx context.Context, sc scope.Scope, records []vectorstore.ChunkRecord) error
	DeleteByParent(ctx context.Context, sc scope.Scope, parentID string) error
}

// DocumentStore records the document row that makes the upload visible.
type DocumentStore interface {
	AddDocument(ctx context.Context, d store.Document) error
}

// Result summarizes one completed ingestion.
type Result struct {
	ParentID    string `json:"parent_id"`
	DisplayName string `json:"display_name"`
	ChunkCount  int    `json:"chunk_count"`
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	extractor Extractor
	namer     Namer
	splitter  *chunker.Splitter
	embedder  Embedder
	index     VectorIndex
	docs      DocumentStore
	uploadDir string
	logger    *slog.Logger
}

func NewPipeline(extractor Extractor, namer Namer, splitter *chunker.Splitter, embedder Embedder, index VectorIndex, docs DocumentStore, uploadDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		namer:     namer,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		docs:      docs,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Ingest processes one uploaded PDF into the given scope. Stage errors
// propagate with their package sentinels intact so the caller can map
// them. If the document row cannot be written after the vectors landed,
// the vectors are deleted again so no orphaned chunks remain searchable.
func (p *Pipeline) Ingest(ctx context.Context, sc scope.Scope, filename string, data []byte) (*Result, error) {
	start := time.Now()

	pages, err := p.extractor.ExtractPages(ctx, data)
	if err != nil {
		return nil, err
	}
	text := strings.Join(pages, "\n\n")

	chunks, err := p.splitter.Split(text)
	if err != nil {
		return nil, err
	}

	displayName := p.namer.ExtractName(ctx, text, filename)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedded %d chunks, expected %d", len(vectors), len(chunks))
	}

	parentID := uuid.NewString()
	scopeID := sc.CollectionID()
	records := make([]vectorstore.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.ChunkRecord{
			ID:        uuid.NewString(),
			ScopeID:   scopeID,
			ParentID:  parentID,
			Ordinal:   c.Ordinal,
			Source:    displayName,
			Text:      c.Text,
			Embedding: vectors[i],
		}
	}

	if err := p.index.InsertChunks(ctx, sc, records); err != nil {
		return nil, err
	}

	storedFilename, err := p.saveUpload(parentID, data)
	if err != nil {
		p.discard(sc, parentID, "")
		return nil, err
	}

	doc := store.Document{
		ParentID:       parentID,
		CompanyID:      sc.CompanyID,
		TeamID:         sc.TeamID,
		ProjectID:      sc.ProjectID,
		DisplayName:    displayName,
		StoredFilename: storedFilename,
		ChunkCount:     len(chunks),
	}
	if err := p.docs.AddDocument(ctx, doc); err != nil {
		p.discard(sc, parentID, storedFilename)
		return nil, fmt.Errorf("record document: %w", err)
	}

	p.logger.Info("document ingested",
		"scope", scopeID,
		"parent_id", parentID,
		"display_name", displayName,
		"chunks", len(chunks),
		"duration", time.Since(start))

	return &Result{
		ParentID:    parentID,
		DisplayName: displayName,
		ChunkCount:  len(chunks),
	}, nil
}

// saveUpload keeps the original bytes on disk under a collision-free
// name. An empty upload dir disables raw file retention.
func (p *Pipeline) saveUpload(parentID string, data []byte) (string, error) {
	if p.uploadDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := parentID + ".pdf"
	if err := os.WriteFile(filepath.Join(p.uploadDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return name, nil
}

// discard undoes the visible side effects of a failed ingestion. Best
// effort on a fresh context, since the caller's may be cancelled.
func (p *Pipeline) discard(sc scope.Scope, parentID, storedFilename string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.index.DeleteByParent(ctx, sc, parentID); err != nil {
		p.logger.Error("rollback of indexed chunks failed", "parent_id", parentID, "error", err)
	}
	if storedFilename != "" {
		if err := os.Remove(filepath.Join(p.uploadDir, storedFilename)); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("rollback of stored file failed", "file", storedFilename, "error", err)
		}
	}
}
