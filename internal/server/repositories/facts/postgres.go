package facts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/dbx"
	"github.com/dmitrijs2005/til/internal/server/models"
)

const factColumns = `id, text, source, category, "votesInteresting", "votesMindblowing", "votesFalse", created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFact(row rowScanner) (*models.Fact, error) {
	f := &models.Fact{}
	err := row.Scan(&f.ID, &f.Text, &f.Source, &f.Category,
		&f.VotesInteresting, &f.VotesMindblowing, &f.VotesFalse, &f.CreatedAt)
	return f, err
}

// List returns the facts matching filter. OrderBy must be one of
// models.OrderColumns; empty means created_at descending.
func (r *PostgresRepository) List(ctx context.Context, filter models.FactFilter) ([]models.Fact, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT " + factColumns + " FROM facts")
	if filter.Category != "" {
		args = append(args, filter.Category)
		sb.WriteString(" WHERE category = $1")
	}

	order, desc := filter.OrderBy, filter.Desc
	if order == "" {
		order, desc = "created_at", true
	}
	if !slices.Contains(models.OrderColumns, order) {
		return nil, fmt.Errorf("%w: unknown order column %q", common.ErrorValidation, order)
	}
	sb.WriteString(` ORDER BY "` + order + `"`)
	if desc {
		sb.WriteString(" DESC")
	}
	sb.WriteString(", id DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Fact, 0)
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, fact *models.Fact) (*models.Fact, error) {
	query :=
		`INSERT INTO facts (text, source, category)
		 VALUES ($1, $2, $3)
		 RETURNING ` + factColumns

	f, err := scanFact(r.db.QueryRowContext(ctx, query, fact.Text, fact.Source, fact.Category))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch map[string]int) (*models.Fact, error) {
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update", common.ErrorValidation)
	}

	cols := make([]string, 0, len(patch))
	for c := range patch {
		if !slices.Contains(models.VoteColumns, c) {
			return nil, fmt.Errorf("%w: column %q is not updatable", common.ErrorValidation, c)
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)

	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		set = append(set, fmt.Sprintf(`"%s" = $%d`, c, i+1))
		args = append(args, patch[c])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE facts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), factColumns)

	f, err := scanFact(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}
