package llm

// ChatRequest represents a provider-agnostic chat completion request.
// A request is built fresh for every call and never persisted.
type ChatRequest struct {
	// Model name (e.g., "deepseek-chat", "deepseek-reasoner")
	Model string `json:"model"`

	// Conversation messages, in conversational order
	Messages []Message `json:"messages"`

	// Whether to stream the response
	Stream bool `json:"stream,omitempty"`

	// Generation parameters
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// WithTemperature sets the sampling temperature and returns the request.
func (r *ChatRequest) WithTemperature(t float64) *ChatRequest {
	r.Temperature = &t
	return r
}

// WithMaxTokens sets the output token limit and returns the request.
// A non-positive value leaves the provider default in place.
func (r *ChatRequest) WithMaxTokens(n int) *ChatRequest {
	if n > 0 {
		r.MaxTokens = &n
	}
	return r
}
