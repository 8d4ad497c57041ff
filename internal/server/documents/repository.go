package documents

import "context"

// Repository stores documents. Get returns common.ErrorNotFound for a path
// that was never written.
type Repository interface {
	Get(ctx context.Context, path string) (*Document, error)
	Put(ctx context.Context, path string, value []byte, updatedBy string) (*Document, error)
}
