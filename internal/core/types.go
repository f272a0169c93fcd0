package core

import "time"

const (
	AppName      = "gptme"
	AppUserAgent = "gptme/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversational turn. Never mutated after construction.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func NewMessage(role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Interaction is one stored exchange: the user prompt, the assistant output,
// and the vectors/concepts derived from their combined text.
type Interaction struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	Embedding []float32 `json:"embedding,omitempty"`
	Concepts  []string  `json:"concepts,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextEntry is a transient role/content pair assembled for one prompt.
// It is never persisted.
type ContextEntry struct {
	Role    string
	Content string
}
