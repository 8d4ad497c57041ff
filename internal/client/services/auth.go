package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

// AuthService signs a device in with a password alone.
//
// Contract:
//   - Authenticate: first active user whose password matches; updates its
//     lastAccess and sets the current-session marker.
//   - IsAuthenticated / CurrentUser: read the marker.
//   - Logout: clear the marker.
type AuthService interface {
	Authenticate(ctx context.Context, password string) (models.CurrentUser, error)
	IsAuthenticated() bool
	CurrentUser() (models.CurrentUser, bool)
	Logout()
}

type authService struct {
	store  Store
	marker store.MarkerStore
	sync   Pusher
	log    logging.Logger
	clock  clock
}

func NewAuthService(st Store, marker store.MarkerStore, p Pusher, log logging.Logger) AuthService {
	return newAuthService(st, marker, p, log)
}

func newAuthService(st Store, marker store.MarkerStore, p Pusher, log logging.Logger) *authService {
	return &authService{
		store:  st,
		marker: marker,
		sync:   p,
		log:    log.With("module", "auth"),
		clock:  timeNow,
	}
}

var errNoMatch = errors.New("no active user with this password")

func passwordsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (a *authService) Authenticate(ctx context.Context, password string) (models.CurrentUser, error) {
	if password == "" {
		a.log.Warn(ctx, "failed login attempt", "reason", "empty password")
		return models.CurrentUser{}, common.ErrInvalidCredentials
	}

	var current models.CurrentUser
	err := saveUsers(ctx, a.store, a.sync, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].Active && passwordsEqual(users[i].Password, password) {
				users[i].LastAccess = a.clock.now()
				current = users[i].Projection()
				return users, nil
			}
		}
		return nil, errNoMatch
	})
	if errors.Is(err, errNoMatch) {
		a.log.Warn(ctx, "failed login attempt", "reason", "no active user matches")
		return models.CurrentUser{}, common.ErrInvalidCredentials
	}
	if err != nil {
		return models.CurrentUser{}, err
	}

	a.marker.Set(current)
	a.log.Info(ctx, "user signed in", "user", current.ID, "role", current.Role)
	return current, nil
}

func (a *authService) IsAuthenticated() bool {
	_, ok := a.marker.Get()
	return ok
}

func (a *authService) CurrentUser() (models.CurrentUser, bool) {
	return a.marker.Get()
}

func (a *authService) Logout() {
	a.marker.Clear()
}
