// Package models defines data structures for the Campusmind chat service.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Message roles. Only these three values are ever stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation represents a persistent chat session.
// Conversations are created on the first message of a session and are
// append-only afterwards; retention is an external policy.
type Conversation struct {
	ID        surrealmodels.RecordID `json:"id"`
	Title     *string                `json:"title,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Message is a single turn within a conversation. Messages are immutable
// once written and strictly timestamp-ordered within their conversation.
type Message struct {
	ID           surrealmodels.RecordID `json:"id"`
	Conversation surrealmodels.RecordID `json:"conversation"`
	Role         string                 `json:"role"`
	Content      string                 `json:"content"`
	CreatedAt    time.Time              `json:"created_at"`
}
