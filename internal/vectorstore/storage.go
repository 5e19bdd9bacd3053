package vectorstore

import (
	"context"

	"docchat/internal/domain"
)

// EmbedFunc turns text into an embedding vector. Collections embed
// client-side, so the index engine never needs to know about models.
type EmbedFunc func(ctx context.Context, text string) ([]float64, error)

// Index is the vector-index contract consumed by ingestion and retrieval.
type Index interface {
	// GetOrCreateCollection returns a handle to the named collection,
	// creating it with the given distance metric if missing.
	GetOrCreateCollection(ctx context.Context, name, metric string, embed EmbedFunc) (Collection, error)
}

// Collection stores documents with metadata and answers similarity queries.
type Collection interface {
	// Add stores documents under the given ids. The three slices are
	// parallel and must have equal length.
	Add(ctx context.Context, ids, documents []string, metadatas []map[string]any) error

	// Query returns up to k candidates most similar to the query texts,
	// with metadata and distances. A non-nil where clause restricts
	// matches to documents whose metadata contains the given values.
	Query(ctx context.Context, queries []string, k int, where map[string]string) ([]domain.RetrievalCandidate, error)
}

// DistanceCosine is the distance metric used for all docchat collections.
const DistanceCosine = "cosine"
