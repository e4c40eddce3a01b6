// Package rag answers questions over a set of documents: chunks are embedded
// into a vector store, the closest ones to a question are retrieved, and the
// model answers from them.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/seekchat/pkg/documents"
	"github.com/papercomputeco/seekchat/pkg/embeddings"
	"github.com/papercomputeco/seekchat/pkg/logger"
	"github.com/papercomputeco/seekchat/pkg/vector"
)

const defaultBatchSize = 16

// IndexConfig configures an Index.
type IndexConfig struct {
	Embedder     embeddings.Embedder
	VectorDriver vector.Driver

	// Splitter defaults to documents.DefaultSplitter.
	Splitter *documents.Splitter

	// BatchSize is the number of chunks embedded per request.
	BatchSize int

	Logger *slog.Logger
}

// Index writes document chunks into a vector store.
type Index struct {
	embedder  embeddings.Embedder
	driver    vector.Driver
	splitter  documents.Splitter
	batchSize int
	logger    *slog.Logger
}

// NewIndex creates an index.
func NewIndex(c IndexConfig) (*Index, error) {
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if c.VectorDriver == nil {
		return nil, fmt.Errorf("vector driver is required")
	}

	idx := &Index{
		embedder:  c.Embedder,
		driver:    c.VectorDriver,
		splitter:  documents.DefaultSplitter(),
		batchSize: c.BatchSize,
		logger:    c.Logger,
	}
	if c.Splitter != nil {
		idx.splitter = *c.Splitter
	}
	if idx.batchSize <= 0 {
		idx.batchSize = defaultBatchSize
	}
	if idx.logger == nil {
		idx.logger = logger.Nop()
	}
	return idx, nil
}

// Stats counts what an Insert wrote.
type Stats struct {
	Documents int
	Chunks    int
}

// Insert splits, embeds and stores docs. A document's chunks are all
// embedded before any is written, and chunks left over from an earlier
// version of the same file are pruned only once the new ones are stored, so
// a failure leaves the previous version searchable.
func (i *Index) Insert(ctx context.Context, docs []documents.Document) (Stats, error) {
	var stats Stats

	for _, doc := range docs {
		chunks, err := i.splitter.Split(doc)
		if err != nil {
			return stats, fmt.Errorf("splitting %s: %w", doc.Source, err)
		}

		embedded, err := i.embed(ctx, chunks)
		if err != nil {
			return stats, fmt.Errorf("indexing %s: %w", doc.Source, err)
		}

		if err := i.driver.Add(ctx, embedded); err != nil {
			return stats, fmt.Errorf("indexing %s: failed to store chunks: %w", doc.Source, err)
		}

		keep := make([]string, len(embedded))
		for n, d := range embedded {
			keep[n] = d.ID
		}
		if err := i.prune(ctx, doc.Source, keep); err != nil {
			return stats, err
		}

		stats.Documents++
		stats.Chunks += len(chunks)
		i.logger.Debug("indexed document", "source", doc.Source, "chunks", len(chunks))
	}

	return stats, nil
}

// Remove drops every chunk of source. It is a no-op for drivers that cannot
// filter by source.
func (i *Index) Remove(ctx context.Context, source string) error {
	return i.prune(ctx, source, nil)
}

func (i *Index) prune(ctx context.Context, source string, keep []string) error {
	d, ok := i.driver.(vector.SourceDeleter)
	if !ok {
		return nil
	}
	n, err := d.DeleteSource(ctx, source, keep...)
	if err != nil {
		return fmt.Errorf("removing %s: %w", source, err)
	}
	if n > 0 {
		i.logger.Debug("pruned stale chunks", "source", source, "chunks", n)
	}
	return nil
}

// embed embeds chunks in batches of batchSize.
func (i *Index) embed(ctx context.Context, chunks []documents.Chunk) ([]vector.Document, error) {
	docs := make([]vector.Document, 0, len(chunks))

	for start := 0; start < len(chunks); start += i.batchSize {
		batch := chunks[start:min(start+i.batchSize, len(chunks))]

		texts := make([]string, len(batch))
		for n, c := range batch {
			texts[n] = c.Text
		}

		embs, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}

		for n, c := range batch {
			docs = append(docs, vector.Document{
				ID:        c.ID,
				Source:    c.Source,
				Content:   c.Text,
				Embedding: embs[n],
			})
		}
	}

	return docs, nil
}
