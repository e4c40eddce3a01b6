package deepseek

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/seekchat/pkg/llm"
	"github.com/papercomputeco/seekchat/pkg/sse"
)

// Stream is a lazily read, single-pass sequence of completion chunks.
// Nothing is read from the connection until Next is called.
type Stream struct {
	body   io.ReadCloser
	reader *sse.Reader
	logger *slog.Logger
	done   bool
}

func newStream(body io.ReadCloser, wireLog io.Writer, logger *slog.Logger) *Stream {
	return &Stream{
		body:   body,
		reader: sse.NewTeeReader(body, wireLog),
		logger: logger,
	}
}

// Next returns the next chunk of the stream. It returns nil, nil once the
// server sends the [DONE] marker or closes the stream. Chunks are returned
// as-is, including control-only chunks with an empty Delta.
func (s *Stream) Next() (*llm.StreamChunk, error) {
	if s.done {
		return nil, nil
	}

	for {
		ev, err := s.reader.Next()
		if err != nil {
			s.done = true
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil || ev.IsDone() {
			s.done = true
			return nil, nil
		}
		if ev.Data == "" {
			continue
		}

		var raw chatChunk
		if err := json.Unmarshal([]byte(ev.Data), &raw); err != nil {
			s.done = true
			return nil, fmt.Errorf("%w: stream chunk: %v", ErrMalformedResponse, err)
		}

		if len(raw.Choices) > 0 && raw.Choices[0].Delta.Content == nil {
			finish := ""
			if fr := raw.Choices[0].FinishReason; fr != nil {
				finish = *fr
			}
			s.logger.Debug("stream chunk without content", "id", raw.ID, "finish_reason", finish)
		}

		return convertChunk(&raw), nil
	}
}

// Close releases the underlying connection. It is safe to call Close before
// the stream is exhausted and more than once.
func (s *Stream) Close() error {
	s.done = true
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}

func convertChunk(raw *chatChunk) *llm.StreamChunk {
	chunk := &llm.StreamChunk{
		Model: raw.Model,
		Usage: convertUsage(raw.Usage),
	}
	if raw.Created > 0 {
		chunk.CreatedAt = time.Unix(raw.Created, 0)
	}

	if len(raw.Choices) == 0 {
		return chunk
	}

	choice := raw.Choices[0]
	chunk.Role = choice.Delta.Role
	if choice.Delta.Content != nil {
		chunk.Delta = *choice.Delta.Content
	}
	if choice.FinishReason != nil {
		chunk.StopReason = *choice.FinishReason
	}
	return chunk
}
