// Package models defines the client-side data model: facts, categories,
// sort keys, queries and auth sessions.
package models

import (
	"fmt"
	"time"
)

// Column names of the remote facts table.
const (
	ColumnID               = "id"
	ColumnCategory         = "category"
	ColumnCreatedAt        = "created_at"
	ColumnVotesInteresting = "votesInteresting"
	ColumnVotesMindblowing = "votesMindblowing"
	ColumnVotesFalse       = "votesFalse"
)

// Fact is a user-submitted record. ID and CreatedAt are assigned by the store.
type Fact struct {
	ID               int64     `json:"id"`
	Text             string    `json:"text"`
	Source           string    `json:"source"`
	Category         string    `json:"category"`
	VotesInteresting int       `json:"votesInteresting"`
	VotesMindblowing int       `json:"votesMindblowing"`
	VotesFalse       int       `json:"votesFalse"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewFact carries the client-supplied fields of an insert.
type NewFact struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

// Disputed reports whether the fact has more false votes than positive ones.
func (f Fact) Disputed() bool {
	return f.VotesInteresting+f.VotesMindblowing < f.VotesFalse
}

// Votes returns the counter stored under column.
func (f Fact) Votes(column VoteColumn) (int, error) {
	switch column {
	case VoteInteresting:
		return f.VotesInteresting, nil
	case VoteMindblowing:
		return f.VotesMindblowing, nil
	case VoteFalse:
		return f.VotesFalse, nil
	}
	return 0, fmt.Errorf("unknown vote column %q", column)
}

// VoteColumn names one of the three vote counters.
type VoteColumn string

const (
	VoteInteresting VoteColumn = ColumnVotesInteresting
	VoteMindblowing VoteColumn = ColumnVotesMindblowing
	VoteFalse       VoteColumn = ColumnVotesFalse
)

// VoteColumns lists the counters in display order.
var VoteColumns = []VoteColumn{VoteInteresting, VoteMindblowing, VoteFalse}

// Valid reports whether c is one of the three counters.
func (c VoteColumn) Valid() bool {
	switch c {
	case VoteInteresting, VoteMindblowing, VoteFalse:
		return true
	}
	return false
}

// ParseVoteColumn accepts either the column name or a short alias
// ("interesting", "mindblowing", "false").
func ParseVoteColumn(s string) (VoteColumn, error) {
	switch s {
	case "interesting", "up", string(VoteInteresting):
		return VoteInteresting, nil
	case "mindblowing", "wow", string(VoteMindblowing):
		return VoteMindblowing, nil
	case "false", "nope", string(VoteFalse):
		return VoteFalse, nil
	}
	return "", fmt.Errorf("unknown vote %q", s)
}
