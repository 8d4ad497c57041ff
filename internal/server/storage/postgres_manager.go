package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
	"github.com/dmitrijs2005/trainingportal/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresManager struct {
	db        *sql.DB
	documents *documents.PostgresRepository
	devices   *devices.PostgresRepository
}

func newPostgresManager(db *sql.DB) *PostgresManager {
	return &PostgresManager{
		db:        db,
		documents: documents.NewPostgresRepository(db),
		devices:   devices.NewPostgresRepository(db),
	}
}

func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := newPostgresManager(db)

	if err := m.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresManager) Documents() documents.Repository {
	return m.documents
}

func (m *PostgresManager) Devices() devices.Repository {
	return m.devices
}

func (m *PostgresManager) Close() error {
	return m.db.Close()
}
