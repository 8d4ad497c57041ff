// Package backup writes portal bundles to a backup store and reads them back.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/cryptox"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

const (
	namePrefix = "portal_backup_"
	nameSuffix = ".json"
	// fixed width, so names sort chronologically
	nameLayout = "2006-01-02T15-04-05.000Z"
)

// ErrPassphraseRequired is returned when restoring a sealed backup without a passphrase.
var ErrPassphraseRequired = errors.New("backup is encrypted, passphrase required")

type Options struct {
	// MaxBackups is the number of newest backups kept; zero keeps all.
	MaxBackups int
	// Passphrase seals new backups when set.
	Passphrase string
}

type Service struct {
	store Store
	opts  Options
	log   logging.Logger
	now   func() time.Time
}

func NewService(st Store, opts Options, log logging.Logger) *Service {
	return &Service{store: st, opts: opts, log: log.With("module", "backup"), now: time.Now}
}

func isBackup(name string) bool {
	return strings.HasPrefix(name, namePrefix) && strings.HasSuffix(name, nameSuffix)
}

// Create stores b under a timestamped name and prunes old backups.
func (s *Service) Create(ctx context.Context, b models.Bundle) (string, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}
	if s.opts.Passphrase != "" {
		data, err = cryptox.Seal(data, []byte(s.opts.Passphrase))
		if err != nil {
			return "", fmt.Errorf("seal backup: %w", err)
		}
	}

	name := namePrefix + s.now().UTC().Format(nameLayout) + nameSuffix
	if err := s.store.Put(ctx, name, data); err != nil {
		return "", err
	}
	s.log.Info(ctx, "backup created", "name", name, "sealed", s.opts.Passphrase != "")

	if err := s.prune(ctx); err != nil {
		s.log.Warn(ctx, "pruning backups failed", "error", err)
	}
	return name, nil
}

func (s *Service) prune(ctx context.Context) error {
	if s.opts.MaxBackups <= 0 {
		return nil
	}
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names[min(len(names), s.opts.MaxBackups):] {
		if err := s.store.Delete(ctx, name); err != nil {
			return err
		}
		s.log.Debug(ctx, "old backup removed", "name", name)
	}
	return nil
}

// List returns backup names, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if isBackup(all[i]) {
			names = append(names, all[i])
		}
	}
	return names, nil
}

// Restore returns the raw bundle stored under name, opening it first when sealed.
func (s *Service) Restore(ctx context.Context, name string) ([]byte, error) {
	data, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !cryptox.IsSealed(data) {
		return data, nil
	}
	if s.opts.Passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	return cryptox.Open(data, []byte(s.opts.Passphrase))
}
