// Package session keeps a multi-turn conversation on top of a stateless
// chat completion endpoint.
//
// The endpoint has no memory of earlier calls, so every request carries the
// whole transcript. A failed round trip removes the unanswered user turn so
// the next request never includes it.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/logger"
)

const (
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

// Chatter sends one non-streamed chat completion request.
type Chatter interface {
	Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// Params are the fixed generation parameters sent with every request.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// System, when set, is sent as a leading system message. It is not part
	// of the transcript.
	System string
}

// DefaultParams returns the parameters used when no option overrides them.
func DefaultParams() Params {
	return Params{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithParams replaces the generation parameters.
func WithParams(p Params) Option {
	return func(s *Session) {
		s.params = p
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session is one conversation. It is not safe for concurrent use.
type Session struct {
	chatter    Chatter
	params     Params
	transcript Transcript
	logger     *slog.Logger
}

// New creates a session that sends requests through chatter.
func New(chatter Chatter, opts ...Option) *Session {
	s := &Session{
		chatter: chatter,
		params:  DefaultParams(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one Exchange. Exactly one of Reply and
// RolledBack is set.
type Result struct {
	// Reply is the assistant turn appended to the transcript.
	Reply *llm.Message

	// RolledBack is the user turn removed from the transcript after Err.
	RolledBack *llm.Message

	// Err is the failure that caused the rollback.
	Err error

	// Usage reports token consumption of a successful exchange.
	Usage *llm.Usage
}

// OK reports whether the exchange produced a reply.
func (r Result) OK() bool {
	return r.Reply != nil
}

// Exchange appends text as a user turn, sends the whole transcript and
// either commits the reply or rolls the user turn back.
func (s *Session) Exchange(ctx context.Context, text string) Result {
	pending, err := s.transcript.Begin(text)
	if err != nil {
		return Result{Err: err}
	}

	req := s.request()
	s.logger.Debug("sending conversation",
		"turns", s.transcript.Len(),
		"model", req.Model,
	)

	resp, err := s.chatter.Chat(ctx, req)
	if err == nil && resp == nil {
		err = fmt.Errorf("empty chat response")
	}
	if err != nil {
		turn := pending.Rollback()
		s.logger.Debug("rolled back unanswered turn",
			"turns", s.transcript.Len(),
			"error", err,
		)
		return Result{RolledBack: &turn, Err: err}
	}

	reply := resp.Message
	if reply.Role == "" {
		reply.Role = llm.RoleAssistant
	}
	pending.Commit(reply)

	return Result{Reply: &reply, Usage: resp.Usage}
}

// Send is Exchange reduced to the reply text.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	res := s.Exchange(ctx, text)
	if !res.OK() {
		return "", res.Err
	}
	return res.Reply.Content, nil
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []llm.Message {
	return s.transcript.Messages()
}

// Len returns the number of turns in the transcript.
func (s *Session) Len() int {
	return s.transcript.Len()
}

// Reset starts a new conversation.
func (s *Session) Reset() {
	s.transcript.Reset()
}

// Params returns the generation parameters.
func (s *Session) Params() Params {
	return s.params
}

func (s *Session) request() *llm.ChatRequest {
	messages := make([]llm.Message, 0, s.transcript.Len()+1)
	if s.params.System != "" {
		messages = append(messages, llm.SystemMessage(s.params.System))
	}
	messages = append(messages, s.transcript.Messages()...)

	return (&llm.ChatRequest{
		Model:    s.params.Model,
		Messages: messages,
	}).WithTemperature(s.params.Temperature).WithMaxTokens(s.params.MaxTokens)
}
