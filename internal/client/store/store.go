// Package store is the device-local persistence of the two portal
// collections. Each collection is one JSON array kept under a fixed key;
// every write replaces the whole array.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/repositories/kv"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/dbx"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

const (
	KeyUsers    = "portal_users"
	KeySessions = "portal_sessions"
	KeyDevMode  = "portal_dev_mode"
)

// Key maps a collection to its storage key.
func Key(c models.Collection) string {
	switch c {
	case models.CollectionUsers:
		return KeyUsers
	case models.CollectionSessions:
		return KeySessions
	default:
		return "portal_" + string(c)
	}
}

// Store serializes access to the collections. Local read-modify-write cycles
// and overwrites coming from the mirror take the same lock, so they never
// interleave.
type Store struct {
	db   *sql.DB
	repo kv.Repository
	log  logging.Logger

	mu sync.Mutex
}

func New(db *sql.DB, log logging.Logger) *Store {
	return &Store{
		db:   db,
		repo: kv.NewSQLiteRepository(db),
		log:  log.With("module", "store"),
	}
}

// load returns the decoded collection and whether it was present. A missing,
// null or undecodable blob reads as an empty, absent collection.
func load[T any](ctx context.Context, s *Store, key string) ([]T, bool, error) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	if raw == nil {
		return []T{}, false, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn(ctx, "stored collection is corrupt, treating as absent", "key", key, "error", fmt.Errorf("%w: %w", common.ErrSerialization, err))
		return []T{}, false, nil
	}
	if items == nil {
		return []T{}, false, nil
	}
	return items, true, nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return raw, nil
}

// update runs a read-modify-write cycle. Nothing is written when fn fails or
// the result cannot be encoded. The written blob is returned for pushing.
func update[T any](ctx context.Context, s *Store, key string, fn func([]T) ([]T, error)) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, _, err := load[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	raw, err := encode(next)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return raw, nil
}

func read[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, _, err := load[T](ctx, s, key)
	return items, err
}

// Users returns the stored users, empty when none are stored.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	return read[models.User](ctx, s, KeyUsers)
}

// Sessions returns the stored training sessions, empty when none are stored.
func (s *Store) Sessions(ctx context.Context) ([]models.Session, error) {
	return read[models.Session](ctx, s, KeySessions)
}

func (s *Store) UpdateUsers(ctx context.Context, fn func([]models.User) ([]models.User, error)) ([]byte, error) {
	return update(ctx, s, KeyUsers, fn)
}

func (s *Store) UpdateSessions(ctx context.Context, fn func([]models.Session) ([]models.Session, error)) ([]byte, error) {
	return update(ctx, s, KeySessions, fn)
}

// Exists reports whether c holds a readable collection.
func (s *Store) Exists(ctx context.Context, c models.Collection) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		ok  bool
		err error
	)
	switch c {
	case models.CollectionUsers:
		_, ok, err = load[models.User](ctx, s, KeyUsers)
	case models.CollectionSessions:
		_, ok, err = load[models.Session](ctx, s, KeySessions)
	default:
		return false, fmt.Errorf("unknown collection %q", c)
	}
	return ok, err
}

// Decode checks that raw is a JSON array of c's records and returns the
// number of records. It fails with common.ErrSerialization otherwise.
func Decode(c models.Collection, raw []byte) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return 0, fmt.Errorf("%w: %s is not an array", common.ErrSerialization, c)
	}

	var (
		n   int
		err error
	)
	switch c {
	case models.CollectionUsers:
		var v []models.User
		err = json.Unmarshal(raw, &v)
		n = len(v)
	case models.CollectionSessions:
		var v []models.Session
		err = json.Unmarshal(raw, &v)
		n = len(v)
	default:
		return 0, fmt.Errorf("%w: unknown collection %q", common.ErrSerialization, c)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrSerialization, err)
	}
	return n, nil
}

// Overwrite replaces c with raw as-is. raw must pass Decode; otherwise the
// stored collection is left untouched.
func (s *Store) Overwrite(ctx context.Context, c models.Collection, raw []byte) error {
	_, err := s.OverwriteIf(ctx, c, raw, nil)
	return err
}

// OverwriteIf is Overwrite guarded by cond, which sees the blob stored
// right now (nil when absent). Checking and writing happen under the store
// lock, so no local update can slip in between. A nil cond always writes.
func (s *Store) OverwriteIf(ctx context.Context, c models.Collection, raw []byte, cond func(current []byte) bool) (bool, error) {
	if _, err := Decode(c, raw); err != nil {
		return false, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrSerialization, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cond != nil {
		current, err := s.repo.Get(ctx, Key(c))
		if err != nil {
			return false, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
		}
		if !cond(current) {
			return false, nil
		}
	}

	if err := s.repo.Set(ctx, Key(c), compact.Bytes()); err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return true, nil
}

// Reset replaces both collections in one transaction and returns the
// written blobs.
func (s *Store) Reset(ctx context.Context, users []models.User, sessions []models.Session) (usersRaw, sessionsRaw []byte, err error) {
	if usersRaw, err = encode(users); err != nil {
		return nil, nil, err
	}
	if sessionsRaw, err = encode(sessions); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyUsers, usersRaw); err != nil {
			return err
		}
		return repo.Set(ctx, KeySessions, sessionsRaw)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return usersRaw, sessionsRaw, nil
}

// Raw returns the stored blob for c, or nil when absent.
func (s *Store) Raw(ctx context.Context, c models.Collection) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, Key(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return raw, nil
}

// DevMode reports the stored development-mode flag; absent means off.
func (s *Store) DevMode(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(ctx, KeyDevMode)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	if raw == nil {
		return false, nil
	}
	on, err := strconv.ParseBool(string(raw))
	if err != nil {
		s.log.Warn(ctx, "dev mode flag is corrupt, treating as off", "value", string(raw))
		return false, nil
	}
	return on, nil
}

func (s *Store) SetDevMode(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Set(ctx, KeyDevMode, []byte(strconv.FormatBool(on))); err != nil {
		return fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return nil
}
