package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

// PortalStats summarizes both collections.
type PortalStats struct {
	TotalUsers          int
	ActiveUsers         int
	TotalSessions       int
	SessionsToday       int
	AverageDuration     int
	DifficultyBreakdown map[models.Difficulty]int
}

// DataService covers whole-portal operations: seeding, export/import,
// reset, the development-mode flag and statistics.
type DataService interface {
	EnsureSeed(ctx context.Context) error
	Export(ctx context.Context) (models.Bundle, error)
	Import(ctx context.Context, raw []byte) error
	ClearAll(ctx context.Context) error
	DevMode(ctx context.Context) (bool, error)
	SetDevMode(ctx context.Context, on bool) error
	PortalStats(ctx context.Context) (PortalStats, error)
}

type dataService struct {
	store  Store
	marker store.MarkerStore
	sync   Pusher
	log    logging.Logger
	clock  clock
}

func NewDataService(st Store, marker store.MarkerStore, p Pusher, log logging.Logger) DataService {
	return newDataService(st, marker, p, log)
}

func newDataService(st Store, marker store.MarkerStore, p Pusher, log logging.Logger) *dataService {
	return &dataService{store: st, marker: marker, sync: p, log: log.With("module", "data"), clock: timeNow}
}

// EnsureSeed writes the seed records into each collection that is absent.
// It runs before the sync engine starts, so the seeds are not pushed.
func (d *dataService) EnsureSeed(ctx context.Context) error {
	ok, err := d.store.Exists(ctx, models.CollectionUsers)
	if err != nil {
		return err
	}
	if !ok {
		if err := saveUsers(ctx, d.store, d.sync, func([]models.User) ([]models.User, error) {
			return SeedUsers(), nil
		}); err != nil {
			return err
		}
		d.log.Info(ctx, "default users created")
	}

	ok, err = d.store.Exists(ctx, models.CollectionSessions)
	if err != nil {
		return err
	}
	if !ok {
		if err := saveSessions(ctx, d.store, d.sync, func([]models.Session) ([]models.Session, error) {
			return SeedSessions(), nil
		}); err != nil {
			return err
		}
		d.log.Info(ctx, "default sessions created")
	}
	return nil
}

func (d *dataService) Export(ctx context.Context) (models.Bundle, error) {
	users, err := d.store.Users(ctx)
	if err != nil {
		return models.Bundle{}, err
	}
	sessions, err := d.store.Sessions(ctx)
	if err != nil {
		return models.Bundle{}, err
	}
	return models.Bundle{
		Users:    users,
		Sessions: sessions,
		Exported: d.clock.now(),
		Version:  models.BundleVersion,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Import replaces every collection present in raw. Both collections are
// checked before anything is written, so a bad bundle changes nothing.
// Unknown top-level fields are ignored.
func (d *dataService) Import(ctx context.Context, raw []byte) error {
	var b models.RawBundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidBundle, err)
	}

	parts := map[models.Collection]json.RawMessage{}
	if !isNull(b.Users) {
		parts[models.CollectionUsers] = b.Users
	}
	if !isNull(b.Sessions) {
		parts[models.CollectionSessions] = b.Sessions
	}

	for c, v := range parts {
		if _, err := store.Decode(c, v); err != nil {
			return fmt.Errorf("%w: %w", common.ErrInvalidBundle, err)
		}
	}

	for _, c := range models.Collections {
		v, ok := parts[c]
		if !ok {
			continue
		}
		if err := d.store.Overwrite(ctx, c, v); err != nil {
			return err
		}
		d.sync.Push(ctx, c, v)
	}

	d.log.Info(ctx, "data imported", "collections", len(parts))
	return nil
}

// ClearAll wipes both collections and the marker, then writes the seeds.
func (d *dataService) ClearAll(ctx context.Context) error {
	usersRaw, sessionsRaw, err := d.store.Reset(ctx, SeedUsers(), SeedSessions())
	if err != nil {
		return err
	}
	d.marker.Clear()
	d.sync.Push(ctx, models.CollectionUsers, usersRaw)
	d.sync.Push(ctx, models.CollectionSessions, sessionsRaw)

	d.log.Warn(ctx, "all portal data cleared and re-seeded")
	return nil
}

func (d *dataService) DevMode(ctx context.Context) (bool, error) {
	return d.store.DevMode(ctx)
}

func (d *dataService) SetDevMode(ctx context.Context, on bool) error {
	return d.store.SetDevMode(ctx, on)
}

func (d *dataService) PortalStats(ctx context.Context) (PortalStats, error) {
	users, err := d.store.Users(ctx)
	if err != nil {
		return PortalStats{}, err
	}
	sessions, err := d.store.Sessions(ctx)
	if err != nil {
		return PortalStats{}, err
	}

	now := d.clock()
	st := PortalStats{
		TotalUsers:          len(users),
		TotalSessions:       len(sessions),
		DifficultyBreakdown: make(map[models.Difficulty]int, len(models.Difficulties)),
	}
	for _, diff := range models.Difficulties {
		st.DifficultyBreakdown[diff] = 0
	}
	for _, u := range users {
		if u.Active {
			st.ActiveUsers++
		}
	}

	total := 0
	for _, s := range sessions {
		total += s.Duration
		if s.CreatedAt.SameDay(now) {
			st.SessionsToday++
		}
		if _, ok := st.DifficultyBreakdown[s.Difficulty]; ok {
			st.DifficultyBreakdown[s.Difficulty]++
		}
	}
	if len(sessions) > 0 {
		st.AverageDuration = int(math.Round(float64(total) / float64(len(sessions))))
	}
	return st, nil
}
