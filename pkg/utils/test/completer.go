package testutils

import (
	"context"
	"errors"
	"strings"

	"github.com/papercomputeco/seekchat/pkg/completion"
	"github.com/papercomputeco/seekchat/pkg/llm"
)

// MockChatClient is a completion.Client that answers every request with the
// same fragments and records what it was sent.
type MockChatClient struct {
	Fragments []string

	// Fail causes both Chat and ChatStream to return an error.
	Fail bool

	Requests []*llm.ChatRequest
}

// NewMockChatClient answers with fragments joined, or streamed one by one.
func NewMockChatClient(fragments ...string) *MockChatClient {
	return &MockChatClient{Fragments: fragments}
}

// LastPrompt returns the user turn of the most recent request.
func (m *MockChatClient) LastPrompt() string {
	if len(m.Requests) == 0 {
		return ""
	}
	msgs := m.Requests[len(m.Requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

func (m *MockChatClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Fail {
		return nil, errors.New("mock chat failure")
	}
	return &llm.ChatResponse{
		Model:   req.Model,
		Message: llm.AssistantMessage(strings.Join(m.Fragments, "")),
	}, nil
}

func (m *MockChatClient) ChatStream(_ context.Context, req *llm.ChatRequest) (completion.ChunkReader, error) {
	m.Requests = append(m.Requests, req)
	if m.Fail {
		return nil, errors.New("mock chat failure")
	}
	return &mockChunkReader{fragments: m.Fragments}, nil
}

type mockChunkReader struct {
	fragments []string
	i         int
}

func (r *mockChunkReader) Next() (*llm.StreamChunk, error) {
	if r.i >= len(r.fragments) {
		return nil, nil
	}
	f := r.fragments[r.i]
	r.i++
	return &llm.StreamChunk{Delta: f}, nil
}

func (r *mockChunkReader) Close() error {
	return nil
}
