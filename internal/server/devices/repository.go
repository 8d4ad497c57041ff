package devices

import "context"

// Repository records enrolled devices. Touch returns common.ErrorNotFound for
// unknown ids.
type Repository interface {
	Create(ctx context.Context, id string) error
	Touch(ctx context.Context, id string) error
}
