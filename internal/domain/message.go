// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single entry in the message list sent to the completion endpoint.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Ids carries the identifiers a caller passes back to continue a conversation.
// They are produced by the remote service and never validated locally.
type Ids struct {
	// ParentMessageID is the id of the last streamed completion item.
	ParentMessageID string `json:"parent_message_id,omitempty"`

	// ConversationID is the stringified index of the last processed choice.
	ConversationID string `json:"conversation_id,omitempty"`
}

// IsZero reports whether no identifier is set.
func (i Ids) IsZero() bool {
	return i.ParentMessageID == "" && i.ConversationID == ""
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
