package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no active session")
	ErrEmptyResult  = errors.New("empty result")
	ErrClosed       = errors.New("client closed")

	ErrSessionChanged = errors.New("session changed during refresh")
)

// APIError is a non-2xx response the service explained with a message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}
