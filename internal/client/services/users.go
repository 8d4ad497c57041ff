package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/validation"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

const (
	passwordAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	generatedPasswordLength = 12
)

// UserStats summarizes the user collection for the admin dashboard.
type UserStats struct {
	Total        int
	Active       int
	Admins       int
	Trainers     int
	AccessToday  int
	WithSessions int
}

// UserService manages portal accounts. Passwords double as login keys, so
// AddUser and UpdateUser reject a password (or non-empty email) that another
// user already has.
type UserService interface {
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	AddUser(ctx context.Context, in models.NewUser) (models.User, error)
	UpdateUser(ctx context.Context, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (models.User, error)
	GeneratePassword() string
	Stats(ctx context.Context) (UserStats, error)
}

type userService struct {
	store Store
	sync  Pusher
	rules validation.Rules
	log   logging.Logger
	clock clock
}

func NewUserService(st Store, p Pusher, rules validation.Rules, log logging.Logger) UserService {
	return newUserService(st, p, rules, log)
}

func newUserService(st Store, p Pusher, rules validation.Rules, log logging.Logger) *userService {
	return &userService{store: st, sync: p, rules: rules, log: log.With("module", "users"), clock: timeNow}
}

func (s *userService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users(ctx)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, common.ErrorNotFound
}

// checkUnique rejects password or email collisions with any user other than
// selfID. Emails must match exactly, case included.
func checkUnique(users []models.User, selfID, password, email string) error {
	for _, u := range users {
		if u.ID == selfID {
			continue
		}
		if u.Password == password {
			return common.ErrDuplicatePassword
		}
		if email != "" && u.Email == email {
			return common.ErrDuplicateEmail
		}
	}
	return nil
}

func normalize(in models.NewUser) models.NewUser {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Email = strings.TrimSpace(in.Email)
	in.Specialty = strings.TrimSpace(in.Specialty)
	return in
}

func (s *userService) AddUser(ctx context.Context, in models.NewUser) (models.User, error) {
	in = normalize(in)
	if err := common.NewValidationError(s.rules.User(in)); err != nil {
		return models.User{}, err
	}

	now := s.clock.now()
	user := models.User{
		ID:         newUserID(),
		Name:       in.Name,
		Category:   in.Category,
		Password:   in.Password,
		Role:       in.Role,
		Email:      in.Email,
		Specialty:  in.Specialty,
		Created:    now,
		LastAccess: now,
		Active:     true,
	}

	err := saveUsers(ctx, s.store, s.sync, func(users []models.User) ([]models.User, error) {
		if err := checkUnique(users, "", user.Password, user.Email); err != nil {
			return nil, err
		}
		return append(users, user), nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info(ctx, "user created", "user", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, patch models.UserPatch) (models.User, error) {
	var updated models.User

	err := saveUsers(ctx, s.store, s.sync, func(users []models.User) ([]models.User, error) {
		idx := indexOfUser(users, patch.ID)
		if idx < 0 {
			return nil, common.ErrorNotFound
		}

		candidate := users[idx]
		patch.Apply(&candidate)
		fields := normalize(models.NewUser{
			Name:      candidate.Name,
			Category:  candidate.Category,
			Password:  candidate.Password,
			Role:      candidate.Role,
			Email:     candidate.Email,
			Specialty: candidate.Specialty,
		})
		candidate.Name, candidate.Category, candidate.Email, candidate.Specialty =
			fields.Name, fields.Category, fields.Email, fields.Specialty

		if touchesProfile(patch) {
			if err := common.NewValidationError(s.rules.User(fields)); err != nil {
				return nil, err
			}
		}
		if err := checkUnique(users, candidate.ID, candidate.Password, candidate.Email); err != nil {
			return nil, err
		}

		users[idx] = candidate
		updated = candidate
		return users, nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info(ctx, "user updated", "user", updated.ID)
	return updated, nil
}

// touchesProfile reports whether patch changes a validated field.
func touchesProfile(p models.UserPatch) bool {
	return p.Name != nil || p.Category != nil || p.Password != nil || p.Role != nil || p.Email != nil
}

func indexOfUser(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	err := saveUsers(ctx, s.store, s.sync, func(users []models.User) ([]models.User, error) {
		idx := indexOfUser(users, id)
		if idx < 0 {
			return nil, common.ErrorNotFound
		}
		return append(users[:idx], users[idx+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user", id)
	return nil
}

func (s *userService) ToggleActive(ctx context.Context, id string) (models.User, error) {
	var updated models.User
	err := saveUsers(ctx, s.store, s.sync, func(users []models.User) ([]models.User, error) {
		idx := indexOfUser(users, id)
		if idx < 0 {
			return nil, common.ErrorNotFound
		}
		users[idx].Active = !users[idx].Active
		updated = users[idx]
		return users, nil
	})
	if err != nil {
		return models.User{}, err
	}
	s.log.Info(ctx, "user status changed", "user", id, "active", updated.Active)
	return updated, nil
}

// GeneratePassword uses math/rand: these are shared, low-stakes credentials.
func (s *userService) GeneratePassword() string {
	var b strings.Builder
	b.Grow(generatedPasswordLength)
	for range generatedPasswordLength {
		b.WriteByte(passwordAlphabet[rand.IntN(len(passwordAlphabet))])
	}
	return b.String()
}

func (s *userService) Stats(ctx context.Context) (UserStats, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return UserStats{}, err
	}
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return UserStats{}, err
	}

	today := s.clock()
	var st UserStats
	st.Total = len(users)
	for _, u := range users {
		if u.Active {
			st.Active++
		}
		switch u.Role {
		case models.RoleAdmin:
			st.Admins++
		case models.RoleTrainer:
			st.Trainers++
		}
		if u.LastAccess.SameDay(today) {
			st.AccessToday++
		}
	}

	creators := make(map[string]struct{})
	for _, sess := range sessions {
		creators[sess.CreatorID] = struct{}{}
	}
	st.WithSessions = len(creators)
	return st, nil
}
