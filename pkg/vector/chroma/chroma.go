// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/papercomputeco/seekchat/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for document chunks.
	DefaultCollectionName = "seekchat"

	DefaultMaxRetries    = 5
	DefaultRetryDelay    = 500 * time.Millisecond
	DefaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds the attempts made to reach Chroma at startup.
	MaxRetries uint

	// RetryDelay and MaxRetryDelay shape the exponential backoff between
	// attempts.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver connects to Chroma and gets or creates the collection. Chroma
// is often started alongside the CLI, so the connection is retried with
// exponential backoff.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	maxRetries := c.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = DefaultRetryDelay
	if c.RetryDelay > 0 {
		b.InitialInterval = c.RetryDelay
	}
	b.MaxInterval = DefaultMaxRetryDelay
	if c.MaxRetryDelay > 0 {
		b.MaxInterval = c.MaxRetryDelay
	}

	d := &Driver{
		baseURL:        strings.TrimSuffix(c.URL, "/"),
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	ctx := context.Background()
	collectionID, err := backoff.Retry(ctx,
		func() (string, error) {
			return d.getOrCreateCollection(ctx)
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(maxRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("chroma not ready, retrying", "error", err, "next", next)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: collection %q after %d attempts: %v",
			vector.ErrConnection, collectionName, maxRetries, err)
	}
	d.collectionID = collectionID

	logger.Debug("connected to chroma",
		"url", d.baseURL,
		"collection", collectionName,
		"collection_id", collectionID,
	)

	return d, nil
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var collection chromaCollection
	status, err := d.do(ctx, http.MethodGet, collectionsPath+"/"+d.collectionName, nil, &collection)
	if err == nil {
		return collection.ID, nil
	}
	if status != http.StatusNotFound && status != http.StatusBadRequest {
		return "", err
	}

	if _, err := d.do(ctx, http.MethodPost, collectionsPath, map[string]string{"name": d.collectionName}, &collection); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}
	return collection.ID, nil
}

func (d *Driver) collectionPath(op string) string {
	return fmt.Sprintf("%s/%s/%s", collectionsPath, d.collectionID, op)
}

// do sends body as JSON and decodes a 2xx response into out. It returns the
// status code for callers that branch on it.
func (d *Driver) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Add stores documents with their embeddings. Chroma's upsert replaces
// documents with the same ID.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	reqBody := chromaAddRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		reqBody.IDs[i] = doc.ID
		reqBody.Embeddings[i] = doc.Embedding
		reqBody.Metadatas[i] = map[string]any{"source": doc.Source}
		reqBody.Documents[i] = doc.Content
	}

	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("upsert"), reqBody, nil); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chroma", "count", len(docs))

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "documents", "distances"},
	}

	var queryResp chromaQueryResponse
	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("query"), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	// one query embedding, so only the first group is populated
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return nil, nil
	}

	ids := queryResp.IDs[0]
	distances := firstGroup(queryResp.Distances)
	metadatas := firstGroup(queryResp.Metadatas)
	documents := firstGroup(queryResp.Documents)

	results := make([]vector.QueryResult, 0, len(ids))
	for i, id := range ids {
		result := vector.QueryResult{
			Document: toDocument(id, i, metadatas, documents),
		}
		if i < len(distances) {
			result.Score = 1.0 / (1.0 + distances[i])
		}
		results = append(results, result)
	}

	d.logger.Debug("queried chroma", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	reqBody := chromaGetRequest{
		IDs:     ids,
		Include: []string{"metadatas", "documents", "embeddings"},
	}

	var getResp chromaGetResponse
	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("get"), reqBody, &getResp); err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(getResp.IDs))
	for i, id := range getResp.IDs {
		docs[i] = toDocument(id, i, getResp.Metadatas, getResp.Documents)
		if i < len(getResp.Embeddings) {
			docs[i].Embedding = getResp.Embeddings[i]
		}
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma", "count", len(ids))

	return nil
}

// DeleteSource removes the chunks whose source metadata matches. Without
// keep it is a single filtered delete, and Chroma does not report a count,
// so zero is returned. With keep the IDs are listed first and only the
// others are deleted.
func (d *Driver) DeleteSource(ctx context.Context, source string, keep ...string) (int, error) {
	where := map[string]any{"source": source}

	if len(keep) == 0 {
		if _, err := d.do(ctx, http.MethodPost, d.collectionPath("delete"), chromaDeleteRequest{Where: where}, nil); err != nil {
			return 0, fmt.Errorf("deleting source %s: %w", source, err)
		}
		return 0, nil
	}

	var listed chromaGetResponse
	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("get"),
		chromaGetRequest{Where: where, Include: []string{}}, &listed); err != nil {
		return 0, fmt.Errorf("listing source %s: %w", source, err)
	}

	var stale []string
	for _, id := range listed.IDs {
		if !slices.Contains(keep, id) {
			stale = append(stale, id)
		}
	}
	if err := d.Delete(ctx, stale); err != nil {
		return 0, fmt.Errorf("deleting source %s: %w", source, err)
	}
	return len(stale), nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

func firstGroup[T any](groups [][]T) []T {
	if len(groups) == 0 {
		return nil
	}
	return groups[0]
}

func toDocument(id string, i int, metadatas []map[string]any, documents []string) vector.Document {
	doc := vector.Document{ID: id}
	if i < len(metadatas) && metadatas[i] != nil {
		if source, ok := metadatas[i]["source"].(string); ok {
			doc.Source = source
		}
	}
	if i < len(documents) {
		doc.Content = documents[i]
	}
	return doc
}

var (
	_ vector.Driver        = (*Driver)(nil)
	_ vector.SourceDeleter = (*Driver)(nil)
)
