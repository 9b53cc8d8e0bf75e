package models

import "fmt"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage builds a message authored by the user.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds a message authored by the assistant.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// ChatRequest is the body posted to the chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// CloneMessages returns an independent copy of msgs. A nil input yields an
// empty, non-nil slice so it encodes as [] rather than null.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// SampleTranscript is the placeholder conversation used by demo mode. It
// deliberately repeats a user/assistant pair.
func SampleTranscript() []Message {
	return []Message{
		NewUserMessage("Hello"),
		NewAssistantMessage("Hello! How can I help you today?"),
		NewUserMessage("Hello"),
		NewAssistantMessage("Hello! How can I help you today?"),
	}
}
