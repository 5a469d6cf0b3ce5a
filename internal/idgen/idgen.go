// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
//
// Event ids are the dedup key for the whole pipeline: the local store keys
// records by id and the collector deduplicates re-submitted batches by id,
// so ids must never be reused within a deployment.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// EventPrefix is prepended to every generated audit event ID.
var EventPrefix = "evt-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 16

// NewEventID returns a new unique audit event ID.
func NewEventID() (string, error) {
	return GenerateWithPrefix(EventPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
