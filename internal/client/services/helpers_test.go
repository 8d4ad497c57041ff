package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/client/validation"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/stretchr/testify/require"
)

// recordingPusher remembers every push instead of talking to a mirror.
type recordingPusher struct {
	mu     sync.Mutex
	pushes []push
}

type push struct {
	c   models.Collection
	raw string
}

func (p *recordingPusher) Push(_ context.Context, c models.Collection, raw []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, push{c: c, raw: string(raw)})
}

func (p *recordingPusher) count(c models.Collection) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, x := range p.pushes {
		if x.c == c {
			n++
		}
	}
	return n
}

func (p *recordingPusher) last(c models.Collection) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.pushes) - 1; i >= 0; i-- {
		if p.pushes[i].c == c {
			return p.pushes[i].raw
		}
	}
	return ""
}

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type env struct {
	store    *store.Store
	marker   *store.MemoryMarkerStore
	pusher   *recordingPusher
	auth     *authService
	users    *userService
	sessions *sessionService
	data     *dataService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := store.OpenDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewDiscardLogger()
	st := store.New(db, log)
	marker := store.NewMemoryMarkerStore()
	p := &recordingPusher{}
	rules := validation.DefaultRules()

	e := &env{
		store:    st,
		marker:   marker,
		pusher:   p,
		auth:     newAuthService(st, marker, p, log),
		users:    newUserService(st, p, rules, log),
		sessions: newSessionService(st, p, rules, log),
		data:     newDataService(st, marker, p, log),
	}
	e.auth.clock = fixedClock
	e.users.clock = fixedClock
	e.sessions.clock = fixedClock
	e.data.clock = fixedClock
	return e
}

// seeded returns an env with the default records in place.
func seeded(t *testing.T) *env {
	t.Helper()
	e := newEnv(t)
	require.NoError(t, e.data.EnsureSeed(context.Background()))
	return e
}

var (
	admin   = models.CurrentUser{ID: "admin001", Name: "Administrador Principal", Role: models.RoleAdmin}
	trainer = models.CurrentUser{ID: "trainer001", Name: "Entrenador Principal", Role: models.RoleTrainer}
)

func validInput() models.SessionInput {
	return models.SessionInput{
		Title:               "  Blocaje alto  ",
		Description:         "Trabajo de blocaje de balones aéreos",
		MainObjective:       "Seguridad en el blocaje",
		Difficulty:          models.DifficultyIntermediate,
		Duration:            40,
		Materials:           models.TextMaterials(" Balones "),
		SecondaryObjectives: nil,
	}
}
