package model

import "time"

// Invocation is the persisted record of one component operation call.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Invocation struct {
	ID           string    `json:"id"`
	Component    string    `json:"component"`
	Operation    string    `json:"operation"`
	Status       string    `json:"status"`
	Digest       string    `json:"digest"`
	PayloadBytes int64     `json:"payload_bytes"`
	ArchiveKey   string    `json:"archive_key"`
	CreatedAt    time.Time `json:"created_at"`
}
