package services

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed is the user-visible fetch failure.
	ErrFetchFailed = errors.New("There was a problem getting data")
	// ErrStaleFetch marks a response that a newer fetch superseded.
	ErrStaleFetch = errors.New("stale fetch discarded")

	ErrInvalidFilter     = errors.New("invalid filter")
	ErrFactNotFound      = errors.New("fact not found")
	ErrInvalidVoteColumn = errors.New("invalid vote column")
	ErrFormBusy          = errors.New("a submission is already in progress")
	ErrRowPending        = errors.New("a vote on this fact is already in progress")
	ErrAuthPending       = errors.New("authentication already in progress")
)

// ValidationError reports why a new fact was rejected before any call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
