// Package sse provides a minimal Server-Sent Events reader for consuming
// streamed chat completions. Events are parsed lazily: nothing is read from
// the source until the caller asks for the next event.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// Event stream format:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// DoneData is the sentinel payload OpenAI-compatible APIs send as the last
// event of a stream.
const DoneData = "[DONE]"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// IsDone reports whether the event is the end-of-stream marker.
func (e *Event) IsDone() bool {
	return e != nil && e.Data == DoneData
}
