package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/seekchat/pkg/completion"
	"github.com/papercomputeco/seekchat/pkg/embeddings"
	"github.com/papercomputeco/seekchat/pkg/logger"
	"github.com/papercomputeco/seekchat/pkg/vector"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 2

// Completer is the model side of a query. *completion.Adapter implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	StreamComplete(ctx context.Context, prompt string) (*completion.Stream, error)
}

// QueryConfig configures a QueryEngine.
type QueryConfig struct {
	Embedder     embeddings.Embedder
	VectorDriver vector.Driver
	Completer    Completer

	// TopK defaults to DefaultTopK.
	TopK int

	// Streaming makes Query return KindStream responses.
	Streaming bool

	// Template defaults to DefaultQATemplate.
	Template string

	Logger *slog.Logger
}

// QueryEngine answers questions from indexed chunks.
type QueryEngine struct {
	embedder  embeddings.Embedder
	driver    vector.Driver
	completer Completer
	topK      int
	streaming bool
	template  string
	logger    *slog.Logger
}

// NewQueryEngine creates a query engine.
func NewQueryEngine(c QueryConfig) (*QueryEngine, error) {
	if c.Embedder == nil || c.VectorDriver == nil || c.Completer == nil {
		return nil, fmt.Errorf("embedder, vector driver and completer are required")
	}

	q := &QueryEngine{
		embedder:  c.Embedder,
		driver:    c.VectorDriver,
		completer: c.Completer,
		topK:      c.TopK,
		streaming: c.Streaming,
		template:  c.Template,
		logger:    c.Logger,
	}
	if q.topK <= 0 {
		q.topK = DefaultTopK
	}
	if q.template == "" {
		q.template = DefaultQATemplate
	}
	if q.logger == nil {
		q.logger = logger.Nop()
	}
	return q, nil
}

// Retrieve returns the chunks closest to question.
func (q *QueryEngine) Retrieve(ctx context.Context, question string) ([]vector.QueryResult, error) {
	emb, err := q.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := q.driver.Query(ctx, emb, q.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	return results, nil
}

// Query retrieves context for question and asks the model. The kind of the
// response is fixed here: KindPlain when nothing was retrieved, otherwise
// KindStream or KindText depending on the engine's streaming setting.
func (q *QueryEngine) Query(ctx context.Context, question string) (*Response, error) {
	q.logger.Debug("query request", "query", question, "top_k", q.topK)

	results, err := q.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Response{Kind: KindPlain, Text: EmptyResponse}, nil
	}

	prompt := BuildPrompt(q.template, question, results)

	if q.streaming {
		stream, err := q.completer.StreamComplete(ctx, prompt)
		if err != nil {
			return nil, err
		}
		return &Response{Kind: KindStream, Stream: stream, Sources: results}, nil
	}

	text, err := q.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &Response{Kind: KindText, Text: text, Sources: results}, nil
}
