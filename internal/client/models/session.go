package models

import "time"

// User is the authenticated identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a present auth session. Absence is represented by a nil *Session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token expires within margin of now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time, margin time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(margin).Before(s.ExpiresAt)
}

// AuthEvent names an auth-state transition.
type AuthEvent string

const (
	AuthInitialSession AuthEvent = "INITIAL_SESSION"
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Clone returns an independent copy; nil stays nil.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
