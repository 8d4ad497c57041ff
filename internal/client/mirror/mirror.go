// Package mirror talks to the remote copy of the portal collections.
//
// A mirror stores one JSON document per path ("users", "sessions") and
// notifies subscribers whenever a document changes. Writes replace the whole
// document; there is no merging and no conflict detection.
package mirror

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

// Mirror is the remote realtime document store.
type Mirror interface {
	// Probe checks once whether the mirror can be used at all.
	Probe(ctx context.Context) error
	// Set replaces the document at path.
	Set(ctx context.Context, path string, value []byte) error
	// Get returns the document at path, or nil when there is none.
	Get(ctx context.Context, path string) ([]byte, error)
	// Subscribe calls fn with the current document and then with every
	// later version until ctx is done. It returns once the subscription is
	// registered. A nil value means the document does not exist.
	Subscribe(ctx context.Context, path string, fn func(value []byte)) error
	Close() error
}

const (
	KindNone      = "none"
	KindMemory    = "memory"
	KindHTTP      = "http"
	KindFirestore = "firestore"
)

// Options selects and configures a mirror implementation.
type Options struct {
	Kind string

	// http
	BaseURL    string
	HealthAddr string

	// firestore
	ProjectID       string
	Root            string
	CredentialsFile string
}

// New builds the mirror named by opts.Kind. KindNone yields a mirror whose
// probe always fails, which keeps the device local-only.
func New(ctx context.Context, opts Options, log logging.Logger) (Mirror, error) {
	switch opts.Kind {
	case "", KindNone:
		return Disabled{}, nil
	case KindMemory:
		return NewMemory(), nil
	case KindHTTP:
		return NewHTTP(opts.BaseURL, opts.HealthAddr, log), nil
	case KindFirestore:
		return NewFirestore(ctx, opts.ProjectID, opts.Root, opts.CredentialsFile, log)
	default:
		return nil, fmt.Errorf("unknown mirror kind %q", opts.Kind)
	}
}

// Disabled is used when no mirror is configured.
type Disabled struct{}

func (Disabled) Probe(context.Context) error { return common.ErrSyncUnavailable }

func (Disabled) Set(context.Context, string, []byte) error { return common.ErrSyncUnavailable }

func (Disabled) Get(context.Context, string) ([]byte, error) { return nil, common.ErrSyncUnavailable }

func (Disabled) Subscribe(context.Context, string, func([]byte)) error {
	return common.ErrSyncUnavailable
}

func (Disabled) Close() error { return nil }
