package storage

import "time"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents one turn half in a chat session. Messages are
// immutable once written and ordered by timestamp within a session.
type ChatMessage struct {
	ID        int64
	SessionID string // Caller-supplied opaque grouping key
	Role      string // "user" or "assistant"
	Message   string
	Provider  string // LLM provider tag that produced/received the message
	Model     string
	Timestamp time.Time
}

// Note represents a user note. Title and content are mutable.
type Note struct {
	ID        int64
	Title     string
	Content   string
	Timestamp time.Time
}
