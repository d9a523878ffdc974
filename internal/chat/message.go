package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in the conversation transcript. Once appended
// to a transcript its fields never change.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Turn is the role/content pair sent to the backend as conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Source is a citation attached to an assistant answer. PageNumber is nil
// when the backend did not report one; zero is a valid page index.
type Source struct {
	PageNumber *int   `json:"page_number,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

// Answer is a successful backend response to a question.
type Answer struct {
	Answer  string
	Sources []Source
}
