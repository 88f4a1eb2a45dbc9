// Package common defines shared constants and sentinel errors used across
// the TaskFlow client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("service unavailable")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Session-flow errors (operations valid only in a given state).
	ErrNoPendingChallenge = errors.New("no pending login challenge")

	// Resource errors.
	ErrNotFound = errors.New("not found")
)
