package devices

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, id string) error {
	query :=
		`INSERT INTO devices (id) VALUES ($1)`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	query :=
		`UPDATE devices SET last_seen_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
