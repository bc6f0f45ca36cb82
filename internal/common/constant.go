package common

const (
	// APIKeyHeaderName carries the project access key on every request.
	APIKeyHeaderName = "apikey"

	// FactsTable is the name of the remote table holding facts.
	FactsTable = "facts"

	// MaxFactLength is the maximum fact text length, in characters.
	MaxFactLength = 200
)
