// Package protocol defines the wire-level conversation types exchanged with
// the text-generation service. The negotiation engine's own persisted
// messages live in the store package; protocol messages are the minimal
// (role, content) pairs a completion request carries.
package protocol

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the prior-turns context sent to the
// text-generation service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// InitMessages creates a single-element message slice from a role and content
// string. Convenience wrapper for starting a conversation from one prompt.
func InitMessages(role Role, content string) []Message {
	return []Message{NewMessage(role, content)}
}
