// Package deepseek implements a client for DeepSeek's OpenAI-compatible chat
// completions API. Any endpoint speaking the same wire format can be targeted
// by overriding the base URL.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/logger"
)

const (
	// DefaultBaseURL is the public DeepSeek API endpoint.
	DefaultBaseURL = "https://api.deepseek.com"

	// DefaultModel is the general purpose chat model.
	DefaultModel = "deepseek-chat"

	// EnvAPIKey and EnvBaseURL are the environment variables read by
	// NewClientFromEnv. EnvLegacyBaseURL is consulted when EnvBaseURL is
	// unset.
	EnvAPIKey        = "DEEPSEEK_API_KEY"
	EnvBaseURL       = "DEEPSEEK_BASE_URL"
	EnvLegacyBaseURL = "DEEPSEEK_DATABASE_URL"

	chatPath = "/chat/completions"

	// LLM responses can be slow
	defaultTimeout = 5 * time.Minute
)

// Config holds configuration for the DeepSeek client.
type Config struct {
	// APIKey is the bearer token. Required.
	APIKey string

	// BaseURL defaults to DefaultBaseURL if empty.
	BaseURL string

	// Timeout bounds a whole request including reading a streamed body.
	// Defaults to 5 minutes.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client; Timeout is ignored when set.
	HTTPClient *http.Client

	// Logger defaults to a no-op logger.
	Logger *slog.Logger

	// WireLog, when set, receives a verbatim copy of every streamed body.
	WireLog io.Writer
}

// Client talks to an OpenAI-compatible chat completions endpoint.
//
// A Client is created once per process and reused by every call. It is meant
// for use from a single goroutine.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	wireLog    io.Writer
}

// NewClient creates a client. It fails with ErrMissingAPIKey before any
// network activity when no key is configured.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
		wireLog:    cfg.WireLog,
	}, nil
}

// NewClientFromEnv creates a client from DEEPSEEK_API_KEY and
// DEEPSEEK_BASE_URL, falling back to DEEPSEEK_DATABASE_URL for the latter.
func NewClientFromEnv() (*Client, error) {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = os.Getenv(EnvLegacyBaseURL)
	}
	return NewClient(Config{
		APIKey:  os.Getenv(EnvAPIKey),
		BaseURL: baseURL,
	})
}

// BaseURL returns the endpoint the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a non-streamed completion request and returns the full response.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(parsed.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := parsed.Choices[0]
	role := choice.Message.Role
	if role == "" {
		role = llm.RoleAssistant
	}

	result := &llm.ChatResponse{
		ID:          parsed.ID,
		Model:       parsed.Model,
		Message:     llm.NewTextMessage(role, choice.Message.Content),
		StopReason:  choice.FinishReason,
		Usage:       convertUsage(parsed.Usage),
		RawResponse: payload,
	}
	if parsed.Created > 0 {
		result.CreatedAt = time.Unix(parsed.Created, 0)
	}

	c.logger.Debug("chat completion received",
		"model", result.Model,
		"stop_reason", result.StopReason,
		"content_length", len(result.Message.Content),
	)

	return result, nil
}

// ChatStream sends a streamed completion request. The returned Stream reads
// the response lazily; the caller must Close it.
func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest) (*Stream, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return newStream(resp.Body, c.wireLog, c.logger), nil
}

// post encodes and sends the request, turning non-2xx responses into
// *APIError. On success the caller owns the response body.
func (c *Client) post(ctx context.Context, req *llm.ChatRequest, stream bool) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil chat request")
	}

	body, err := json.Marshal(toWire(req, stream))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"base_url", c.baseURL,
		"model", req.Model,
		"message_count", len(req.Messages),
		"stream", stream,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	return resp, nil
}

func toWire(req *llm.ChatRequest, stream bool) chatRequest {
	messages := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	wire := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Stream:      stream,
	}
	if stream {
		wire.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	return wire
}

func decodeAPIError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var env errorEnvelope
	if err := json.Unmarshal(payload, &env); err == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(payload))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func convertUsage(u *usage) *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:          u.PromptTokens,
		CompletionTokens:      u.CompletionTokens,
		TotalTokens:           u.TotalTokens,
		PromptCacheHitTokens:  u.PromptCacheHitTokens,
		PromptCacheMissTokens: u.PromptCacheMissTokens,
	}
}
