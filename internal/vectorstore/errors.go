package vectorstore

import "errors"

var (
	// ErrCollectionUnavailable means the storage backing a scope's
	// collection could not be reached or opened. A scope that simply has no
	// documents yet is an empty result, not this error.
	ErrCollectionUnavailable = errors.New("collection unavailable")
	// ErrDimensionMismatch means an embedding does not match the collection
	// vector size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
