package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, path string) (*Document, error) {
	query :=
		`SELECT path, value, version, updated_by, updated_at
		 FROM documents WHERE path = $1`

	var d Document
	err := r.db.QueryRowContext(ctx, query, path).
		Scan(&d.Path, &d.Value, &d.Version, &d.UpdatedBy, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return &d, nil
}

// Put overwrites the document in a single upsert, so concurrent writers to
// one path always receive distinct versions.
func (r *PostgresRepository) Put(ctx context.Context, path string, value []byte, updatedBy string) (*Document, error) {
	query :=
		`INSERT INTO documents (path, value, version, updated_by, updated_at)
		 VALUES ($1, $2::jsonb, 1, $3, NOW())
		 ON CONFLICT (path) DO UPDATE
		 SET value = EXCLUDED.value,
		     version = documents.version + 1,
		     updated_by = EXCLUDED.updated_by,
		     updated_at = EXCLUDED.updated_at
		 RETURNING version, updated_at`

	d := &Document{Path: path, Value: value, UpdatedBy: updatedBy}
	err := r.db.QueryRowContext(ctx, query, path, string(value), updatedBy).Scan(&d.Version, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return d, nil
}
