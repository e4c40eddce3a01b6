// Package pipeline opens the embedding and vector store stack shared by the
// index and query commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/papercomputeco/seekchat/cmd/seekchat/sqlitepath"
	"github.com/papercomputeco/seekchat/pkg/documents"
	"github.com/papercomputeco/seekchat/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/seekchat/pkg/embeddings/utils"
	"github.com/papercomputeco/seekchat/pkg/logger"
	"github.com/papercomputeco/seekchat/pkg/rag"
	"github.com/papercomputeco/seekchat/pkg/vector"
	vectorutils "github.com/papercomputeco/seekchat/pkg/vector/utils"
)

// Stack is an embedder, a vector store and the index writing into it.
type Stack struct {
	Embedder embeddings.Embedder
	Driver   vector.Driver
	Index    *rag.Index

	logger *slog.Logger
}

// Open builds a Stack from the embedding.*, vector_store.* and storage.*
// keys of v.
func Open(v *viper.Viper, configDir string, log *slog.Logger) (*Stack, error) {
	if log == nil {
		log = logger.Nop()
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: v.GetString("embedding.provider"),
		TargetURL:    v.GetString("embedding.target"),
		Model:        v.GetString("embedding.model"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	provider := v.GetString("vector_store.provider")
	opts := &vectorutils.NewVectorDriverOpts{
		ProviderType: provider,
		TargetURL:    v.GetString("vector_store.target"),
		Dimensions:   v.GetUint("embedding.dimensions"),
		Logger:       log,
	}
	if provider == "" || provider == "sqlite" || provider == "sqlitevec" {
		opts.SQLitePath, err = sqlitepath.ResolveSQLitePath(v.GetString("storage.sqlite_path"), configDir)
		if err != nil {
			_ = embedder.Close()
			return nil, err
		}
	}

	driver, err := vectorutils.NewVectorDriver(opts)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	log.Debug("opened document pipeline",
		"embedding_provider", v.GetString("embedding.provider"),
		"embedding_model", v.GetString("embedding.model"),
		"vector_store", provider,
		"sqlite_path", opts.SQLitePath,
	)

	return New(embedder, driver, log)
}

// New wraps an existing embedder and vector store.
func New(embedder embeddings.Embedder, driver vector.Driver, log *slog.Logger) (*Stack, error) {
	if log == nil {
		log = logger.Nop()
	}

	idx, err := rag.NewIndex(rag.IndexConfig{
		Embedder:     embedder,
		VectorDriver: driver,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}

	return &Stack{
		Embedder: embedder,
		Driver:   driver,
		Index:    idx,
		logger:   log,
	}, nil
}

// IndexDir loads every supported file under dir and indexes it.
func (s *Stack) IndexDir(ctx context.Context, dir string) (rag.Stats, error) {
	docs, err := documents.LoadDir(dir)
	if err != nil {
		return rag.Stats{}, err
	}
	return s.Index.Insert(ctx, docs)
}

// IndexFile re-indexes a single file.
func (s *Stack) IndexFile(ctx context.Context, path string) (rag.Stats, error) {
	doc, err := documents.LoadFile(path)
	if err != nil {
		return rag.Stats{}, err
	}
	return s.Index.Insert(ctx, []documents.Document{doc})
}

// Close releases the vector store and the embedder.
func (s *Stack) Close() error {
	return errors.Join(s.Driver.Close(), s.Embedder.Close())
}
