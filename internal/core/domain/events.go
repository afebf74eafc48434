package domain

import "time"

// QueryProcessedEvent is published after each completed chat turn so that
// analytics consumers can observe usage without sitting on the request path.
type QueryProcessedEvent struct {
	ConversationID string    `json:"conversation_id"`
	Query          string    `json:"query"`
	Intent         Intent    `json:"intent"`
	Methods        []string  `json:"methods"`
	EntityCount    int       `json:"entity_count"`
	DurationMS     float64   `json:"duration_ms"`
	ProcessedAt    time.Time `json:"processed_at"`
}
