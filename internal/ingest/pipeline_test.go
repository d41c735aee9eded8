package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuserve/docintel/internal/chunker"
	"github.com/docuserve/docintel/internal/scope"
	"github.com/docuserve/docintel/internal/store"
	"github.com/docuserve/docintel/internal/vectorstore"
)

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(context.Context, []byte) ([]string, error) {
	return f.pages, f.err
}

type fakeNamer struct{ name string }

func (f *fakeNamer) ExtractName(_ context.Context, _, fallback string) string {
	if f.name == "" {
		return fallback
	}
	return f.name
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = make([]float32, vectorstore.VectorDimension)
	}
	return vecs, nil
}

type fakeIndex struct {
	inserted  []vectorstore.ChunkRecord
	insertErr error
	deleted   []string
}

func (f *fakeIndex) InsertChunks(_ context.Context, _ scope.Scope, records []vectorstore.ChunkRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func (f *fakeIndex) DeleteByParent(_ context.Context, _ scope.Scope, parentID string) error {
	f.deleted = append(f.deleted, parentID)
	return nil
}

type fakeDocs struct {
	added []store.Document
	err   error
}

func (f *fakeDocs) AddDocument(_ context.Context, d store.Document) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, d)
	return nil
}

func newTestPipeline(ext *fakeExtractor, emb *fakeEmbedder, idx *fakeIndex, docs *fakeDocs) *Pipeline {
	return NewPipeline(ext, &fakeNamer{name: "Annual Report"}, chunker.NewSplitter(400, 100), emb, idx, docs, "", nil)
}

func TestIngest(t *testing.T) {
	ext := &fakeExtractor{pages: []string{strings.Repeat("alpha beta gamma. ", 60), "closing remarks."}}
	idx := &fakeIndex{}
	docs := &fakeDocs{}
	p := newTestPipeline(ext, &fakeEmbedder{}, idx, docs)

	sc := scope.Team(3, 7)
	res, err := p.Ingest(context.Background(), sc, "report.pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, "Annual Report", res.DisplayName)
	assert.NotEmpty(t, res.ParentID)
	assert.Greater(t, res.ChunkCount, 1)

	require.Len(t, idx.inserted, res.ChunkCount)
	for i, rec := range idx.inserted {
		assert.Equal(t, sc.CollectionID(), rec.ScopeID)
		assert.Equal(t, res.ParentID, rec.ParentID)
		assert.Equal(t, i, rec.Ordinal)
		assert.Equal(t, "Annual Report", rec.Source)
	}

	require.Len(t, docs.added, 1)
	assert.Equal(t, int64(3), docs.added[0].CompanyID)
	assert.Equal(t, int64(7), docs.added[0].TeamID)
	assert.Equal(t, res.ChunkCount, docs.added[0].ChunkCount)
}

func TestIngest_EmptyDocument(t *testing.T) {
	ext := &fakeExtractor{pages: []string{"  ", "\n"}}
	idx := &fakeIndex{}
	docs := &fakeDocs{}
	p := newTestPipeline(ext, &fakeEmbedder{}, idx, docs)

	_, err := p.Ingest(context.Background(), scope.Company(1), "empty.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, chunker.ErrEmptyDocument)
	assert.Empty(t, idx.inserted)
	assert.Empty(t, docs.added)
}

func TestIngest_EmbeddingFailureStopsBeforeIndex(t *testing.T) {
	embErr := errors.New("embedding unavailable")
	ext := &fakeExtractor{pages: []string{"some document content"}}
	idx := &fakeIndex{}
	docs := &fakeDocs{}
	p := newTestPipeline(ext, &fakeEmbedder{err: embErr}, idx, docs)

	_, err := p.Ingest(context.Background(), scope.Company(1), "doc.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, embErr)
	assert.Empty(t, idx.inserted)
	assert.Empty(t, docs.added)
}

func TestIngest_IndexFailureLeavesNoRecord(t *testing.T) {
	ext := &fakeExtractor{pages: []string{"some document content"}}
	idx := &fakeIndex{insertErr: vectorstore.ErrCollectionUnavailable}
	docs := &fakeDocs{}
	p := newTestPipeline(ext, &fakeEmbedder{}, idx, docs)

	_, err := p.Ingest(context.Background(), scope.Company(1), "doc.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, vectorstore.ErrCollectionUnavailable)
	assert.Empty(t, docs.added)
}

func TestIngest_RecordFailureRollsBackVectors(t *testing.T) {
	ext := &fakeExtractor{pages: []string{"some document content"}}
	idx := &fakeIndex{}
	docs := &fakeDocs{err: errors.New("disk full")}
	p := newTestPipeline(ext, &fakeEmbedder{}, idx, docs)

	_, err := p.Ingest(context.Background(), scope.Company(1), "doc.pdf", []byte("%PDF"))
	require.Error(t, err)

	// The indexed chunks of the failed upload were deleted again.
	require.Len(t, idx.deleted, 1)
	require.NotEmpty(t, idx.inserted)
	assert.Equal(t, idx.inserted[0].ParentID, idx.deleted[0])
}

func TestIngest_StoresRawFile(t *testing.T) {
	dir := t.TempDir()
	ext := &fakeExtractor{pages: []string{"some document content"}}
	idx := &fakeIndex{}
	docs := &fakeDocs{}
	p := NewPipeline(ext, &fakeNamer{}, chunker.NewSplitter(400, 100), &fakeEmbedder{}, idx, docs, dir, nil)

	res, err := p.Ingest(context.Background(), scope.Company(1), "doc.pdf", []byte("%PDF raw bytes"))
	require.NoError(t, err)

	require.Len(t, docs.added, 1)
	assert.Equal(t, res.ParentID+".pdf", docs.added[0].StoredFilename)
	assert.FileExists(t, dir+"/"+docs.added[0].StoredFilename)
	// Namer fell back to the original filename.
	assert.Equal(t, "doc.pdf", res.DisplayName)
}
