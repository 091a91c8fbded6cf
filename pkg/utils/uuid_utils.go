package utils

import (
	"github.com/google/uuid"
)

// newUUIDv7 is swappable in tests.
var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 returns a time-ordered UUID. User IDs are v7 so primary
// key inserts stay roughly append-ordered under concurrent registration.
// If the v7 source fails, a random v4 keeps the caller unblocked.
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}
