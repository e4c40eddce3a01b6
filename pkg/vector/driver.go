// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Document is a stored chunk of text with its embedding.
type Document struct {
	// ID uniquely identifies the chunk.
	ID string

	// Source is the path of the file the chunk was read from.
	Source string

	// Content is the chunk text handed to the model as context.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}

// DefaultTopK is used when a query asks for zero or fewer results.
const DefaultTopK = 10

// SourceDeleter is implemented by drivers that can drop the chunks read
// from one file, used when the file is re-indexed or removed. Chunks whose
// IDs are in keep survive.
type SourceDeleter interface {
	DeleteSource(ctx context.Context, source string, keep ...string) (int, error)
}
