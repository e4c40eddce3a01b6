package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/seekchat/pkg/vector"
)

// MockVectorDriver is a test vector driver that records added documents and
// answers every query with a fixed result set.
type MockVectorDriver struct {
	documents []vector.Document
	results   []vector.QueryResult

	// FailQuery causes Query to return an error.
	FailQuery bool

	// LastTopK is the topK of the most recent query.
	LastTopK int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		documents: make([]vector.Document, 0),
		results:   make([]vector.QueryResult, 0),
	}
}

// SetResults sets what Query returns.
func (m *MockVectorDriver) SetResults(results ...vector.QueryResult) {
	m.results = results
}

// Documents returns every document passed to Add.
func (m *MockVectorDriver) Documents() []vector.Document {
	return m.documents
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.documents = append(m.documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	m.LastTopK = topK
	if m.FailQuery {
		return nil, errors.Join(vector.ErrConnection, errors.New("mock query failure"))
	}
	if len(m.results) < topK {
		return m.results, nil
	}
	return m.results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, _ []string) ([]vector.Document, error) {
	return m.documents, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, _ []string) error {
	return nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}
