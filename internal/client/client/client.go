package client

import (
	"context"

	"github.com/dmitrijs2005/til/internal/client/models"
)

// Client is the remote data service contract: session auth plus
// read/insert/update against a table.
type Client interface {
	Close() error

	GetSession(ctx context.Context) (*models.Session, error)
	OnAuthStateChange(fn AuthListener) Subscription
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (*models.Session, error)

	Select(ctx context.Context, table string, q models.FactQuery) ([]models.Fact, error)
	Insert(ctx context.Context, table string, f models.NewFact) (*models.Fact, error)
	Update(ctx context.Context, table string, id int64, patch map[string]int) (*models.Fact, error)
}

// AuthListener receives auth-state transitions. A nil session means
// signed out.
type AuthListener func(event models.AuthEvent, session *models.Session)

// Subscription is returned by OnAuthStateChange.
type Subscription interface {
	Unsubscribe()
}
