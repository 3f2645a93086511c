package model

import (
	"encoding/json"
	"time"
)

// Quiz represents a saved quiz: a title, an optional description, and the
// question payload the React client authored.
//
// WHY json.RawMessage FOR QUESTIONS?
// The question format (choices, correct answers, per-question timers…) is owned
// by the client-side quiz editor and evolves independently of the backend. The
// server stores and returns the payload verbatim — json.RawMessage keeps the
// bytes as-is instead of forcing a server-side schema that would break every
// time the editor grows a feature.
type Quiz struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"` // account that created the quiz
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   json.RawMessage `json:"questions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
