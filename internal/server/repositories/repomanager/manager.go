package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/til/internal/dbx"
	"github.com/dmitrijs2005/til/internal/server/repositories/facts"
	"github.com/dmitrijs2005/til/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/til/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Facts(db dbx.DBTX) facts.Repository
}
