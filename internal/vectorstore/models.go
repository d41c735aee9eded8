package vectorstore

// ChunkRecord is one stored chunk: its text, embedding, and the metadata
// that traces it back to the upload it came from. ScopeID is the owning
// collection identifier and is stored in the payload as well, so queries
// can assert exact scope membership independently of collection selection.
type ChunkRecord struct {
	ID       string
	ScopeID  string
	ParentID string
	Ordinal  int
	Source   string
	Text     string
	// Embedding is computed once at insert and never re-derived.
	Embedding []float32
}

// ScoredChunk pairs a retrieved chunk with its query similarity.
type ScoredChunk struct {
	ChunkRecord
	Score float32
}

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
