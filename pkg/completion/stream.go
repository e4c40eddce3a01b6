package completion

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/seekchat/pkg/llm"
)

// Chunk is one step of a streamed completion.
type Chunk struct {
	// Text is everything received so far.
	Text string

	// Delta is the fragment added by this chunk. Never empty.
	Delta string
}

// Stream yields cumulative completion chunks. Each Next call reads only as
// far as the next non-empty fragment.
type Stream struct {
	reader ChunkReader
	logger *slog.Logger
	text   strings.Builder
	usage  *llm.Usage
	err    error
	done   bool
}

// Next returns the next chunk, or nil, nil when the completion is finished.
// Fragments without content are skipped.
func (s *Stream) Next() (*Chunk, error) {
	if s.done {
		return nil, s.err
	}

	for {
		raw, err := s.reader.Next()
		if err != nil {
			s.logger.Error("streaming completion failed", "error", err)
			s.finish(fmt.Errorf("stream complete: %w", err))
			return nil, s.err
		}
		if raw == nil {
			s.finish(nil)
			return nil, nil
		}
		if raw.Usage != nil {
			s.usage = raw.Usage
		}
		if !raw.HasContent() {
			continue
		}

		s.text.WriteString(raw.Delta)
		return &Chunk{Text: s.text.String(), Delta: raw.Delta}, nil
	}
}

// Text returns the text accumulated so far.
func (s *Stream) Text() string {
	return s.text.String()
}

// Usage returns token usage if the endpoint reported it.
func (s *Stream) Usage() *llm.Usage {
	return s.usage
}

// Close releases the underlying connection. It is safe to call more than
// once.
func (s *Stream) Close() error {
	if s.done && s.reader == nil {
		return nil
	}
	s.done = true
	r := s.reader
	s.reader = nil
	return r.Close()
}

func (s *Stream) finish(err error) {
	s.done = true
	s.err = err
}
