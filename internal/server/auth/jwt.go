// Package auth signs and verifies the backend's HS256 access tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user id in sub plus the email, which the client shows
// without another round trip.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetClaimsFromToken verifies tokenString. An expired token yields
// common.ErrTokenExpired, anything else that fails common.ErrInvalidToken.
func GetClaimsFromToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims, err := GetClaimsFromToken(tokenString, secretKey)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
