package storage

import (
	"context"

	"github.com/dmitrijs2005/trainingportal/internal/server/devices"
	"github.com/dmitrijs2005/trainingportal/internal/server/documents"
)

// InMemoryManager loses everything on restart. Devices must enroll again.
type InMemoryManager struct {
	documents *documents.MemoryRepository
	devices   *devices.MemoryRepository
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		documents: documents.NewMemoryRepository(),
		devices:   devices.NewMemoryRepository(),
	}
}

func (m *InMemoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryManager) Ping(ctx context.Context) error          { return nil }
func (m *InMemoryManager) Close() error                            { return nil }

func (m *InMemoryManager) Documents() documents.Repository {
	return m.documents
}

func (m *InMemoryManager) Devices() devices.Repository {
	return m.devices
}
