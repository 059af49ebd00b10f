// Package store persists documents and chunks in a single embedded SQLite
// database, fronting vector search with an in-memory HNSW graph and
// full-text search with FTS5.
package store

import (
	"context"
	"fmt"
)

// VectorStoreConfig configures an HNSW vector index.
type VectorStoreConfig struct {
	// Dimensions is the embedding vector length; every Add/Search call must
	// match it exactly.
	Dimensions int

	// Metric is the distance metric: "cos" (cosine, default) or "l2".
	Metric string

	// M is HNSW max connections per layer (default: 16).
	M int

	// EfSearch is HNSW query-time candidate list size (default: 20).
	EfSearch int
}

// DefaultVectorStoreConfig returns sensible defaults for the given
// dimensionality.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		Metric:     "cos",
		M:          16,
		EfSearch:   20,
	}
}

// VectorResult is a single nearest-neighbor hit, keyed by the chunk's
// string-formatted row ID.
type VectorResult struct {
	ID       string
	Distance float32
	Score    float32
}

// VectorStore provides semantic search using the HNSW algorithm over
// string-keyed vectors.
type VectorStore interface {
	// Add inserts vectors with their IDs. If an ID exists, it is replaced.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search finds k nearest neighbors to query vector.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Delete removes vectors by ID.
	Delete(ctx context.Context, ids []string) error

	// AllIDs returns all vector IDs in the store (for consistency checks).
	AllIDs() []string

	// Contains checks if ID exists.
	Contains(id string) bool

	// Count returns number of vectors.
	Count() int

	// Persistence
	Save(path string) error
	Load(path string) error
	Close() error
}

// ErrDimensionMismatch reports a vector whose length doesn't match the
// store's configured dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// SearchMode selects which retrieval branch(es) SearchChunks runs.
type SearchMode string

const (
	SearchModeVector SearchMode = "vector"
	SearchModeFTS    SearchMode = "fts"
	SearchModeHybrid SearchMode = "hybrid"
)

// SearchOptions parameterizes SearchChunks.
type SearchOptions struct {
	Mode           SearchMode
	Query          string    // required for FTS/Hybrid
	QueryEmbedding []float32 // required for Vector/Hybrid
	TopK           int
	RRFK           int // RRF constant k; defaults to 60 when <= 0
}

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1
