package engine

import "github.com/google/uuid"

// generateID creates a random session ID.
func generateID() string {
	return uuid.NewString()
}

// shortID trims an ID for log fields.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
