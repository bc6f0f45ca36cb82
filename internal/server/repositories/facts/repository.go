// Package facts stores the shared facts table.
package facts

import (
	"context"

	"github.com/dmitrijs2005/til/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, filter models.FactFilter) ([]models.Fact, error)
	Create(ctx context.Context, fact *models.Fact) (*models.Fact, error)
	// Update sets the given vote columns of row id and returns the new row.
	// Only models.VoteColumns are accepted.
	Update(ctx context.Context, id int64, patch map[string]int) (*models.Fact, error)
}
