package mirror

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	fieldValue     = "value"
	fieldUpdatedAt = "updatedAt"

	DefaultFirestoreRoot = "portal"
)

// Firestore keeps each path as the document <root>/<path>. The collection
// JSON is stored as a string field so arrays of any shape survive unchanged.
// Set FIRESTORE_EMULATOR_HOST to use the local emulator.
type Firestore struct {
	client *firestore.Client
	root   string
	log    logging.Logger
}

func NewFirestore(ctx context.Context, projectID, root, credentialsFile string, log logging.Logger) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return NewFirestoreWithClient(client, root, log), nil
}

func NewFirestoreWithClient(client *firestore.Client, root string, log logging.Logger) *Firestore {
	if root == "" {
		root = DefaultFirestoreRoot
	}
	return &Firestore{client: client, root: root, log: log.With("module", "mirror.firestore")}
}

func (f *Firestore) doc(path string) *firestore.DocumentRef {
	return f.client.Collection(f.root).Doc(path)
}

// Probe reads one document; a missing document still proves connectivity.
func (f *Firestore) Probe(ctx context.Context) error {
	_, err := f.doc("users").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("%w: %w", common.ErrSyncUnavailable, err)
	}
	return nil
}

func (f *Firestore) Set(ctx context.Context, path string, value []byte) error {
	_, err := f.doc(path).Set(ctx, map[string]any{
		fieldValue:     string(value),
		fieldUpdatedAt: firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("firestore set %s: %w", path, err)
	}
	return nil
}

func snapshotValue(snap *firestore.DocumentSnapshot) ([]byte, error) {
	if snap == nil || !snap.Exists() {
		return nil, nil
	}
	v, err := snap.DataAt(fieldValue)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want string", fieldValue, v)
	}
	return []byte(s), nil
}

func (f *Firestore) Get(ctx context.Context, path string) ([]byte, error) {
	snap, err := f.doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore get %s: %w", path, err)
	}
	return snapshotValue(snap)
}

func (f *Firestore) Subscribe(ctx context.Context, path string, fn func([]byte)) error {
	it := f.doc(path).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled && !errors.Is(err, context.Canceled) {
					f.log.Warn(ctx, "snapshot listener stopped", "path", path, "error", err)
				}
				return
			}
			value, err := snapshotValue(snap)
			if err != nil {
				f.log.Warn(ctx, "ignoring malformed snapshot", "path", path, "error", err)
				continue
			}
			fn(value)
		}
	}()
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
