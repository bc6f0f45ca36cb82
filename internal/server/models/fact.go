package models

import "time"

// Vote columns, as named in the facts table and on the wire.
const (
	ColumnVotesInteresting = "votesInteresting"
	ColumnVotesMindblowing = "votesMindblowing"
	ColumnVotesFalse       = "votesFalse"
)

// VoteColumns lists the only columns a PATCH may touch.
var VoteColumns = []string{ColumnVotesInteresting, ColumnVotesMindblowing, ColumnVotesFalse}

// OrderColumns lists the columns a listing may be ordered by.
var OrderColumns = []string{"id", "created_at", ColumnVotesInteresting, ColumnVotesMindblowing, ColumnVotesFalse}

// Categories mirrors the check constraint on facts.category.
var Categories = []string{
	"technology", "science", "finance", "society",
	"entertainment", "health", "history", "news",
}

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

// FactFilter narrows and orders a listing. Empty fields mean no filter and
// the default order (newest first).
type FactFilter struct {
	Category string
	OrderBy  string
	Desc     bool
}
