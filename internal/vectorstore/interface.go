// Package vectorstore defines the similarity-search boundary. Implementations
// can use Qdrant, Pinecone, Weaviate, etc.; the orchestrator only ever asks
// for the best-scoring candidate under a set of attribute filters.
package vectorstore

import "context"

// Candidate is a single result from vector similarity search: an opaque id,
// a relevance score, and whatever attribute payload the index stores.
type Candidate struct {
	// ID is the unique identifier of the candidate in the index.
	ID string

	// Score is the similarity score (higher is more similar).
	Score float32

	// Metadata contains the candidate's attribute payload.
	Metadata map[string]any
}

// VectorStore performs similarity search with equality filtering.
type VectorStore interface {
	// Query returns up to topK candidates nearest to vector, restricted to
	// entries whose attributes match every filter term, and excluding
	// anything below minScore. An empty result is a legitimate outcome, not
	// an error.
	Query(ctx context.Context, vector []float32, filter map[string]string, topK int, minScore float32) ([]Candidate, error)

	// Close releases any resources held by the vector store.
	Close() error
}
