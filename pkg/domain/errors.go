package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned by stores for IDs they cannot hold.
var ErrInvalidSessionID = errors.New("invalid session id")
