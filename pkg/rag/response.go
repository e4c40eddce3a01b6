package rag

import (
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/seekchat/pkg/completion"
	"github.com/papercomputeco/seekchat/pkg/vector"
)

// Kind tells which field of a Response holds the answer.
type Kind int

const (
	// KindText is a complete answer in Text.
	KindText Kind = iota

	// KindStream is an answer still arriving on Stream.
	KindStream

	// KindPlain is a fixed message in Text, produced without calling the
	// model.
	KindPlain
)

// EmptyResponse is the answer when nothing relevant was retrieved.
const EmptyResponse = "Empty Response"

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStream:
		return "stream"
	case KindPlain:
		return "plain"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Response is the answer to one query.
type Response struct {
	Kind   Kind
	Text   string
	Stream *completion.Stream

	// Sources are the chunks the answer was built from.
	Sources []vector.QueryResult
}

// Close releases the stream of a KindStream response.
func (r *Response) Close() error {
	if r.Stream == nil {
		return nil
	}
	return r.Stream.Close()
}

// Render writes the answer to w, streaming deltas as they arrive, and
// returns the full text. A stream is closed once drained.
func Render(w io.Writer, r *Response) (string, error) {
	switch r.Kind {
	case KindStream:
		defer r.Stream.Close()

		var b strings.Builder
		for {
			chunk, err := r.Stream.Next()
			if err != nil {
				return b.String(), err
			}
			if chunk == nil {
				break
			}
			b.WriteString(chunk.Delta)
			if _, err := io.WriteString(w, chunk.Delta); err != nil {
				return b.String(), err
			}
		}
		_, err := io.WriteString(w, "\n")
		return b.String(), err
	default:
		_, err := fmt.Fprintln(w, r.Text)
		return r.Text, err
	}
}
