package documents

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/common"
)

// MemoryRepository keeps documents in process memory. It backs the
// "memory" storage kind and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{docs: make(map[string]Document), now: time.Now}
}

func (r *MemoryRepository) Get(ctx context.Context, path string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.docs[path]
	if !ok {
		return nil, common.ErrorNotFound
	}
	d.Value = append([]byte(nil), d.Value...)
	return &d, nil
}

func (r *MemoryRepository) Put(ctx context.Context, path string, value []byte, updatedBy string) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Document{
		Path:      path,
		Value:     append([]byte(nil), value...),
		Version:   r.docs[path].Version + 1,
		UpdatedBy: updatedBy,
		UpdatedAt: r.now().UTC(),
	}
	r.docs[path] = d

	d.Value = append([]byte(nil), value...)
	return &d, nil
}
