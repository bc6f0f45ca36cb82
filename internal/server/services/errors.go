package services

import "errors"

// Auth failures whose text is shown to the end user as is.
var (
	ErrUserExists          = errors.New("User already registered")
	ErrInvalidCredentials  = errors.New("Invalid login credentials")
	ErrInvalidRefreshToken = errors.New("Invalid Refresh Token")
	ErrWeakPassword        = errors.New("Password should be at least 6 characters")
	ErrInvalidEmail        = errors.New("Unable to validate email address: invalid format")
)
