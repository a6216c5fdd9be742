// Package uuidx generates time ordered identifiers for events, tasks and
// processes.
package uuidx

import "github.com/google/uuid"

// New returns a version 7 UUID. Version 7 ids sort by creation time, which
// keeps log lines and event ids in publish order. It panics if the random
// source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString is New formatted in canonical form.
func NewString() string {
	return New().String()
}

// Named returns prefix followed by a dash and the first block of a fresh id,
// e.g. "process-01932c4e". It is meant for human readable default names.
func Named(prefix string) string {
	s := NewString()
	return prefix + "-" + s[:8]
}
