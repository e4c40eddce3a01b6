package llm

import "time"

// StreamChunk represents a single event of a streamed response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Role is set on the first chunk of a stream only
	Role string `json:"role,omitempty"`

	// Delta is the incremental text carried by this chunk. Control-only
	// chunks (role announcements, finish reasons) leave it empty.
	Delta string `json:"delta,omitempty"`

	// Stop reason (only present on the final content chunk)
	StopReason string `json:"stop_reason,omitempty"`

	// Usage metrics (typically only present on the final chunk)
	Usage *Usage `json:"usage,omitempty"`
}

// HasContent reports whether the chunk carries a non-empty content delta.
func (c *StreamChunk) HasContent() bool {
	return c != nil && c.Delta != ""
}
