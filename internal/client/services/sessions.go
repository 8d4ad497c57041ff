package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/validation"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

// Period narrows the admin session list by creation date.
type Period string

const (
	PeriodAll      Period = "all"
	PeriodToday    Period = "today"
	PeriodThisWeek Period = "thisWeek"
)

// SessionService manages training sessions. Only the creator or an admin
// may change or remove a session.
type SessionService interface {
	List(ctx context.Context) ([]models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	Create(ctx context.Context, actor models.CurrentUser, in models.SessionInput) (models.Session, error)
	Update(ctx context.Context, actor models.CurrentUser, id string, in models.SessionInput) (models.Session, error)
	Delete(ctx context.Context, actor models.CurrentUser, id string) error
	Filter(ctx context.Context, search string, difficulty models.Difficulty) ([]models.Session, error)
	AdminFilter(ctx context.Context, period Period, search string) ([]models.Session, error)
}

type sessionService struct {
	store Store
	sync  Pusher
	rules validation.Rules
	log   logging.Logger
	clock clock
}

func NewSessionService(st Store, p Pusher, rules validation.Rules, log logging.Logger) SessionService {
	return newSessionService(st, p, rules, log)
}

func newSessionService(st Store, p Pusher, rules validation.Rules, log logging.Logger) *sessionService {
	return &sessionService{store: st, sync: p, rules: rules, log: log.With("module", "sessions"), clock: timeNow}
}

func (s *sessionService) List(ctx context.Context) ([]models.Session, error) {
	return s.store.Sessions(ctx)
}

func (s *sessionService) Get(ctx context.Context, id string) (models.Session, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if idx := indexOfSession(sessions, id); idx >= 0 {
		return sessions[idx], nil
	}
	return models.Session{}, common.ErrorNotFound
}

func indexOfSession(sessions []models.Session, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func cleanInput(in models.SessionInput) models.SessionInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.MainObjective = strings.TrimSpace(in.MainObjective)
	if in.SecondaryObjectives == nil {
		in.SecondaryObjectives = []string{}
	}
	if !in.Materials.IsList() {
		in.Materials.Text = strings.TrimSpace(in.Materials.Text)
	}
	return in
}

func (s *sessionService) Create(ctx context.Context, actor models.CurrentUser, in models.SessionInput) (models.Session, error) {
	in = cleanInput(in)
	if err := common.NewValidationError(s.rules.Session(in)); err != nil {
		return models.Session{}, err
	}

	now := s.clock.now()
	session := models.Session{
		ID:                  newSessionID(),
		Title:               in.Title,
		Description:         in.Description,
		MainObjective:       in.MainObjective,
		SecondaryObjectives: in.SecondaryObjectives,
		Difficulty:          in.Difficulty,
		Duration:            in.Duration,
		Materials:           in.Materials,
		ImageData:           in.ImageData,
		ImageURL:            nil,
		CreatorID:           actor.ID,
		CreatorName:         actor.Name,
		CreatedAt:           now,
		UpdatedAt:           now,
		Active:              true,
	}

	err := saveSessions(ctx, s.store, s.sync, func(sessions []models.Session) ([]models.Session, error) {
		return append(sessions, session), nil
	})
	if err != nil {
		return models.Session{}, err
	}

	s.log.Info(ctx, "session created", "session", session.ID, "creator", actor.ID)
	return session, nil
}

func (s *sessionService) Update(ctx context.Context, actor models.CurrentUser, id string, in models.SessionInput) (models.Session, error) {
	in = cleanInput(in)
	if err := common.NewValidationError(s.rules.Session(in)); err != nil {
		return models.Session{}, err
	}

	var updated models.Session
	err := saveSessions(ctx, s.store, s.sync, func(sessions []models.Session) ([]models.Session, error) {
		idx := indexOfSession(sessions, id)
		if idx < 0 {
			return nil, common.ErrorNotFound
		}
		cur := sessions[idx]
		if !cur.OwnedBy(actor) {
			return nil, common.ErrForbidden
		}

		cur.Title = in.Title
		cur.Description = in.Description
		cur.MainObjective = in.MainObjective
		cur.SecondaryObjectives = in.SecondaryObjectives
		cur.Difficulty = in.Difficulty
		cur.Duration = in.Duration
		cur.Materials = in.Materials
		if in.ImageData != nil {
			cur.ImageData = in.ImageData
		}
		cur.UpdatedAt = s.clock.now()

		sessions[idx] = cur
		updated = cur
		return sessions, nil
	})
	if err != nil {
		return models.Session{}, err
	}

	s.log.Info(ctx, "session updated", "session", id, "by", actor.ID)
	return updated, nil
}

func (s *sessionService) Delete(ctx context.Context, actor models.CurrentUser, id string) error {
	err := saveSessions(ctx, s.store, s.sync, func(sessions []models.Session) ([]models.Session, error) {
		idx := indexOfSession(sessions, id)
		if idx < 0 {
			return nil, common.ErrorNotFound
		}
		if !sessions[idx].OwnedBy(actor) {
			return nil, common.ErrForbidden
		}
		return append(sessions[:idx], sessions[idx+1:]...), nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "session deleted", "session", id, "by", actor.ID)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Filter matches search against title, description and main objective,
// case-insensitively. Empty arguments match everything.
func (s *sessionService) Filter(ctx context.Context, search string, difficulty models.Difficulty) ([]models.Session, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))

	out := []models.Session{}
	for _, sess := range sessions {
		matchesSearch := term == "" ||
			containsFold(sess.Title, term) ||
			containsFold(sess.Description, term) ||
			containsFold(sess.MainObjective, term)
		matchesDifficulty := difficulty == "" || sess.Difficulty == difficulty
		if matchesSearch && matchesDifficulty {
			out = append(out, sess)
		}
	}
	return out, nil
}

// AdminFilter narrows by creation period and then by search over title,
// description and creator name.
func (s *sessionService) AdminFilter(ctx context.Context, period Period, search string) ([]models.Session, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	term := strings.ToLower(strings.TrimSpace(search))

	out := []models.Session{}
	for _, sess := range sessions {
		switch period {
		case PeriodToday:
			if !sess.CreatedAt.SameDay(now) {
				continue
			}
		case PeriodThisWeek:
			if sess.CreatedAt.Before(weekAgo) {
				continue
			}
		}
		if term != "" &&
			!containsFold(sess.Title, term) &&
			!containsFold(sess.Description, term) &&
			!containsFold(sess.CreatorName, term) {
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}
