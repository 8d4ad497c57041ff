// Package services holds the portal's application logic: authentication,
// user administration, training sessions and whole-portal data operations.
//
// Every mutation writes the full collection to the local store and then
// hands the written blob to the sync engine, so each local write is pushed.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/google/uuid"
)

// Store is the local persistence used by the services.
type Store interface {
	Users(ctx context.Context) ([]models.User, error)
	Sessions(ctx context.Context) ([]models.Session, error)
	UpdateUsers(ctx context.Context, fn func([]models.User) ([]models.User, error)) ([]byte, error)
	UpdateSessions(ctx context.Context, fn func([]models.Session) ([]models.Session, error)) ([]byte, error)
	Exists(ctx context.Context, c models.Collection) (bool, error)
	Overwrite(ctx context.Context, c models.Collection, raw []byte) error
	Reset(ctx context.Context, users []models.User, sessions []models.Session) ([]byte, []byte, error)
	DevMode(ctx context.Context) (bool, error)
	SetDevMode(ctx context.Context, on bool) error
}

// Pusher sends a written collection to the remote mirror.
type Pusher interface {
	Push(ctx context.Context, c models.Collection, raw []byte)
}

var _ Store = (*store.Store)(nil)

func newUserID() string {
	return "user_" + uuid.NewString()
}

func newSessionID() string {
	return "session_" + uuid.NewString()
}

func saveUsers(ctx context.Context, st Store, p Pusher, fn func([]models.User) ([]models.User, error)) error {
	raw, err := st.UpdateUsers(ctx, fn)
	if err != nil {
		return err
	}
	p.Push(ctx, models.CollectionUsers, raw)
	return nil
}

func saveSessions(ctx context.Context, st Store, p Pusher, fn func([]models.Session) ([]models.Session, error)) error {
	raw, err := st.UpdateSessions(ctx, fn)
	if err != nil {
		return err
	}
	p.Push(ctx, models.CollectionSessions, raw)
	return nil
}

type clock func() time.Time

func (c clock) now() models.Timestamp {
	return models.NewTimestamp(c())
}

var timeNow clock = time.Now
