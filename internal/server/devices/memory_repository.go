package devices

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
)

type MemoryRepository struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lastSeen: make(map[string]time.Time)}
}

func (r *MemoryRepository) Create(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeen[id] = time.Now()
	return nil
}

func (r *MemoryRepository) Touch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lastSeen[id]; !ok {
		return common.ErrorNotFound
	}
	r.lastSeen[id] = time.Now()
	return nil
}

// Forget removes a device so its token stops working.
func (r *MemoryRepository) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastSeen, id)
}
