package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/til/internal/common"
	"github.com/dmitrijs2005/til/internal/dbx"
)

const (
	queryGet    = `SELECT value FROM metadata WHERE key = ?`
	queryPut    = `INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	queryDelete = `DELETE FROM metadata WHERE key = ?`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, queryGet, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, common.ErrorNotFound
	case err != nil:
		return nil, fmt.Errorf("metadata get %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty metadata key", common.ErrorValidation)
	}
	if value == nil {
		value = []byte{}
	}
	if _, err := r.db.ExecContext(ctx, queryPut, key, value); err != nil {
		return fmt.Errorf("metadata put %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, queryDelete, key); err != nil {
		return fmt.Errorf("metadata delete %q: %w", key, err)
	}
	return nil
}
