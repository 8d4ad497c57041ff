// Package storage wires the mirror's repositories to a backing store.
package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
)

type Manager interface {
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Documents() documents.Repository
	Devices() devices.Repository
	Close() error
}

// Open returns the manager for kind ("postgres" or "memory"). Postgres
// migrations are applied before it returns.
func Open(ctx context.Context, kind, dsn string) (Manager, error) {
	switch kind {
	case "memory":
		return NewInMemoryManager(), nil
	case "postgres", "":
		return NewPostgresManager(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}
