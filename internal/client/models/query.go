package models

import "fmt"

// SortKey selects the list order. Every key sorts descending.
type SortKey string

const (
	SortUpvotes     SortKey = "upvotes"
	SortRecent      SortKey = "recent"
	SortMindblowing SortKey = "mindblowing"
	SortFalse       SortKey = "false"
)

// DefaultSortKey is the initial list order.
const DefaultSortKey = SortUpvotes

// SortKeys lists the keys in display order.
var SortKeys = []SortKey{SortUpvotes, SortRecent, SortMindblowing, SortFalse}

// Column maps the key to the table column used for ordering.
func (k SortKey) Column() string {
	switch k {
	case SortRecent:
		return ColumnCreatedAt
	case SortMindblowing:
		return ColumnVotesMindblowing
	case SortFalse:
		return ColumnVotesFalse
	default:
		return ColumnVotesInteresting
	}
}

// Valid reports whether k is a known key.
func (k SortKey) Valid() bool {
	switch k {
	case SortUpvotes, SortRecent, SortMindblowing, SortFalse:
		return true
	}
	return false
}

// ParseSortKey accepts a key name or the column it maps to.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if s == string(k) || s == k.Column() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// FactQuery describes one read against the facts table.
// An empty Category means no filter.
type FactQuery struct {
	Category   string
	Order      string
	Descending bool
}

// NewFactQuery derives the query for a category filter and sort key.
func NewFactQuery(category string, key SortKey) FactQuery {
	q := FactQuery{Order: key.Column(), Descending: true}
	if category != CategoryAll {
		q.Category = category
	}
	return q
}
