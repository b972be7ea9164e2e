package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// UUID generates a UUID v4 (random).
// Returns a string in the format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
func UUID() string {
	return uuid.NewString()
}

// Sortable generates a UUID v7, whose string form sorts by creation time.
// Falls back to a v4 UUID if the clock sequence cannot be read.
func Sortable() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Short generates a short random hex ID (16 characters).
func Short() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}
