package model

import "time"

// Lead is a captured prospect contact. Email is the natural key: a second
// capture with the same email is reported as already registered, not an
// error.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	RawMessage  string    `json:"raw_message"`
	CaptureTime time.Time `json:"capture_time"`
}

// HistoryEntry is one persisted side of a conversation turn.
type HistoryEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Speaker   string      `json:"speaker"` // "user" or "bot"
	Message   string      `json:"message"`
	Emotion   Emotion     `json:"emotion,omitempty"`
	Sources   []SearchHit `json:"sources,omitempty"`
}
