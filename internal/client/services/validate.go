package services

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/til/internal/client/models"
	"github.com/dmitrijs2005/til/internal/common"
)

// IsValidHTTPURL reports whether s parses as an absolute http(s) URL with a host.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ValidateNewFact checks the create precondition and returns a
// *ValidationError for the first field that fails.
func ValidateNewFact(f models.NewFact) error {
	switch {
	case f.Text == "":
		return &ValidationError{Field: "text", Message: "must not be empty"}
	case utf8.RuneCountInString(f.Text) > common.MaxFactLength:
		return &ValidationError{Field: "text", Message: "must be at most 200 characters"}
	case !IsValidHTTPURL(f.Source):
		return &ValidationError{Field: "source", Message: "must be an http or https URL"}
	case !models.IsCategory(f.Category):
		return &ValidationError{Field: "category", Message: "must be one of the listed categories"}
	}
	return nil
}
