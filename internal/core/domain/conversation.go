package domain

import "time"

// Conversation groups chat messages for one user session.
type Conversation struct {
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationMessage is one persisted chat turn.
type ConversationMessage struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Intent         string    `json:"intent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatRequest is one inbound chat call.
type ChatRequest struct {
	UserID         string
	ConversationID string
	Message        string
	IncludeContext bool
	Options        Options
}

// ChatResult is the user-facing outcome of one chat call.
type ChatResult struct {
	ConversationID string         `json:"conversation_id"`
	UserMessage    string         `json:"user_message"`
	Response       string         `json:"response"`
	Classification Classification `json:"query_classification"`
	Concepts       []Concept      `json:"key_concepts"`
	Methods        []string       `json:"processing_methods"`
	EntityCount    int            `json:"num_relevant_entities"`
	ContextUsed    string         `json:"context_used,omitempty"`
}
