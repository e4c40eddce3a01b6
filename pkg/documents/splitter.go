package documents

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultChunkSize = 1024
	DefaultOverlap   = 200
)

// ErrInvalidOverlap is returned when the overlap is not smaller than the
// chunk size.
var ErrInvalidOverlap = errors.New("chunk overlap must be smaller than chunk size")

// Chunk is a contiguous piece of a document.
type Chunk struct {
	// ID is stable across runs for the same source and position.
	ID     string
	Source string
	Index  int
	Text   string
}

// Splitter packs whole sentences into chunks of at most ChunkSize
// characters. Consecutive chunks share up to Overlap characters of trailing
// sentences. Sentences longer than ChunkSize are cut.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// DefaultSplitter returns a splitter with the default sizes.
func DefaultSplitter() Splitter {
	return Splitter{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Split cuts doc into chunks.
func (s Splitter) Split(doc Document) ([]Chunk, error) {
	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := max(s.Overlap, 0)
	if overlap >= size {
		return nil, ErrInvalidOverlap
	}

	var (
		chunks []Chunk
		cur    []string
		curLen int
	)
	emit := func() {
		text := strings.TrimSpace(strings.Join(cur, ""))
		if text == "" {
			return
		}
		idx := len(chunks)
		chunks = append(chunks, Chunk{
			ID:     uuid.NewSHA1(namespace, []byte(doc.Source+"#"+strconv.Itoa(idx))).String(),
			Source: doc.Source,
			Index:  idx,
			Text:   text,
		})
	}

	for _, seg := range segments(doc.Text, size) {
		n := utf8.RuneCountInString(seg)
		if curLen+n > size && len(cur) > 0 {
			emit()
			cur, curLen = tail(cur, overlap)
			for curLen+n > size && len(cur) > 0 {
				curLen -= utf8.RuneCountInString(cur[0])
				cur = cur[1:]
			}
		}
		cur = append(cur, seg)
		curLen += n
	}
	if len(cur) > 0 {
		emit()
	}

	return chunks, nil
}

// tail returns the longest suffix of segs whose length fits in limit.
func tail(segs []string, limit int) ([]string, int) {
	total := 0
	i := len(segs)
	for i > 0 {
		n := utf8.RuneCountInString(segs[i-1])
		if total+n > limit {
			break
		}
		total += n
		i--
	}
	out := make([]string, len(segs)-i)
	copy(out, segs[i:])
	return out, total
}

// segments splits text into sentences that keep their trailing whitespace,
// so joining them restores the text. No segment is longer than size.
func segments(text string, size int) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i, r := range runes {
		if !endsSentence(runes, i, r) {
			continue
		}
		end := i + 1
		for end < len(runes) && unicode.IsSpace(runes[end]) && runes[end] != '\n' {
			end++
		}
		out = append(out, cut(runes[start:end], size)...)
		start = end
	}
	if start < len(runes) {
		out = append(out, cut(runes[start:], size)...)
	}

	return out
}

func endsSentence(runes []rune, i int, r rune) bool {
	switch r {
	case '\n', '。', '！', '？', '；', '!', '?':
		return true
	case '.':
		return i+1 == len(runes) || unicode.IsSpace(runes[i+1])
	}
	return false
}

func cut(runes []rune, size int) []string {
	var out []string
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	return append(out, string(runes))
}
