// Package llm holds the provider-agnostic chat completion types shared by the
// session, the completion adapter and the remote client.
package llm

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // plain text content
}

// NewTextMessage creates a message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// UserMessage is shorthand for NewTextMessage(RoleUser, text).
func UserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// AssistantMessage is shorthand for NewTextMessage(RoleAssistant, text).
func AssistantMessage(text string) Message {
	return NewTextMessage(RoleAssistant, text)
}

// SystemMessage is shorthand for NewTextMessage(RoleSystem, text).
func SystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}
