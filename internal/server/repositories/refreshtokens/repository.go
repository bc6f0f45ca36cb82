// Package refreshtokens stores the opaque refresh tokens handed out at
// sign-in. Each token is single use: refreshing deletes it and issues a new one.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/til/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, expiring at now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is unknown.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes one token. A missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
