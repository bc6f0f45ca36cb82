package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/server/models"
	"github.com/dmitrijs2005/til/internal/server/repositories/repomanager"
)

type FactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFactService(db *sql.DB, m repomanager.RepositoryManager) *FactService {
	return &FactService{db: db, repomanager: m}
}

func (s *FactService) List(ctx context.Context, filter models.FactFilter) ([]models.Fact, error) {
	return s.repomanager.Facts(s.db).List(ctx, filter)
}

// Create stores a new fact on behalf of userID, which must be set.
func (s *FactService) Create(ctx context.Context, userID string, fact models.Fact) (*models.Fact, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	fact.Text = strings.TrimSpace(fact.Text)
	fact.Source = strings.TrimSpace(fact.Source)
	if err := validateFact(fact); err != nil {
		return nil, err
	}

	return s.repomanager.Facts(s.db).Create(ctx, &fact)
}

// Update overwrites vote counters of fact id. Counters never go negative.
func (s *FactService) Update(ctx context.Context, id int64, patch map[string]int) (*models.Fact, error) {
	for col, v := range patch {
		if !slices.Contains(models.VoteColumns, col) {
			return nil, fmt.Errorf("%w: column %q is not updatable", common.ErrorValidation, col)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", common.ErrorValidation, col)
		}
	}
	return s.repomanager.Facts(s.db).Update(ctx, id, patch)
}

func validateFact(f models.Fact) error {
	switch {
	case f.Text == "":
		return fmt.Errorf("%w: text must not be empty", common.ErrorValidation)
	case utf8.RuneCountInString(f.Text) > common.MaxFactLength:
		return fmt.Errorf("%w: text must be at most %d characters", common.ErrorValidation, common.MaxFactLength)
	case !isHTTPURL(f.Source):
		return fmt.Errorf("%w: source must be an http or https URL", common.ErrorValidation)
	case !slices.Contains(models.Categories, f.Category):
		return fmt.Errorf("%w: unknown category %q", common.ErrorValidation, f.Category)
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
