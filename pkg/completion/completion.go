// Package completion adapts the chat completions client to a single-prompt
// text completion interface, the shape a query engine expects from its LLM.
//
// Every call is one system turn plus one user turn. Nothing is remembered
// between calls.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/llm/deepseek"
	"github.com/papercomputeco/seekchat/pkg/logger"
)

const (
	DefaultSystemPrompt = "你是一个聪明的 AI 助手"
	DefaultModel        = deepseek.DefaultModel
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1024

	// DefaultContextWindow is the input window of deepseek-chat.
	DefaultContextWindow = 64 * 1024
)

// ErrEmptyResponse is returned when the endpoint answers without a message.
var ErrEmptyResponse = errors.New("completion: empty response")

// ChunkReader is a lazily read sequence of raw stream chunks.
type ChunkReader interface {
	Next() (*llm.StreamChunk, error)
	Close() error
}

// Client issues chat completion requests.
type Client interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
	ChatStream(ctx context.Context, req *llm.ChatRequest) (ChunkReader, error)
}

// FromDeepSeek wraps a DeepSeek client as a completion Client.
func FromDeepSeek(c *deepseek.Client) Client {
	return deepseekClient{c}
}

type deepseekClient struct {
	*deepseek.Client
}

func (d deepseekClient) ChatStream(ctx context.Context, req *llm.ChatRequest) (ChunkReader, error) {
	stream, err := d.Client.ChatStream(ctx, req)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Metadata describes the model behind an Adapter.
type Metadata struct {
	ModelName     string
	ContextWindow int
	NumOutput     int
	IsChatModel   bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSystemPrompt replaces the system turn sent with every prompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Adapter) {
		a.system = prompt
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(a *Adapter) {
		if model != "" {
			a.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Adapter) {
		a.temperature = t
	}
}

// WithMaxTokens sets the output token limit.
func WithMaxTokens(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// Adapter turns a prompt into a completion. The client handle is fixed at
// construction and shared by every call; an Adapter is meant for use from a
// single goroutine.
type Adapter struct {
	client      Client
	system      string
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// New creates an adapter over client.
func New(client Client, opts ...Option) *Adapter {
	a := &Adapter{
		client:      client,
		system:      DefaultSystemPrompt,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Metadata reports the model name and its limits.
func (a *Adapter) Metadata() Metadata {
	return Metadata{
		ModelName:     a.model,
		ContextWindow: DefaultContextWindow,
		NumOutput:     a.maxTokens,
		IsChatModel:   true,
	}
}

// Complete returns the full completion for prompt.
func (a *Adapter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Chat(ctx, a.request(prompt))
	if err != nil {
		a.logger.Error("completion failed", "model", a.model, "error", err)
		return "", fmt.Errorf("complete: %w", err)
	}
	if resp == nil {
		a.logger.Error("completion failed", "model", a.model, "error", ErrEmptyResponse)
		return "", ErrEmptyResponse
	}

	if resp.Usage != nil {
		a.logger.Debug("completion done",
			"model", resp.Model,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
		)
	}
	return resp.Message.Content, nil
}

// StreamComplete starts a streamed completion for prompt. The returned
// Stream must be closed.
func (a *Adapter) StreamComplete(ctx context.Context, prompt string) (*Stream, error) {
	req := a.request(prompt)
	req.Stream = true

	reader, err := a.client.ChatStream(ctx, req)
	if err != nil {
		a.logger.Error("streaming completion failed", "model", a.model, "error", err)
		return nil, fmt.Errorf("stream complete: %w", err)
	}
	return &Stream{reader: reader, logger: a.logger}, nil
}

func (a *Adapter) request(prompt string) *llm.ChatRequest {
	messages := make([]llm.Message, 0, 2)
	if a.system != "" {
		messages = append(messages, llm.SystemMessage(a.system))
	}
	messages = append(messages, llm.UserMessage(prompt))

	return (&llm.ChatRequest{
		Model:    a.model,
		Messages: messages,
	}).WithTemperature(a.temperature).WithMaxTokens(a.maxTokens)
}
