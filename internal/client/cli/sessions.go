package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/validation"
	"github.com/dmitrijs2005/trainingportal/internal/common"
)

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) askDefault(prompt, def string) (string, error) {
	return GetDefault(a.reader, prompt, def, a.out)
}

func (a *App) actor() (models.CurrentUser, error) {
	u, ok := a.authService.CurrentUser()
	if !ok {
		return models.CurrentUser{}, common.ErrNotAuthenticated
	}
	return u, nil
}

func (a *App) printSessions(list []models.Session) {
	if len(list) == 0 {
		a.println("No sessions found.")
		return
	}
	for _, s := range list {
		a.println(sessionLine(s))
	}
	a.printf("%d session(s)\n", len(list))
}

func (a *App) ListSessions(ctx context.Context) error {
	list, err := a.sessionService.List(ctx)
	if err != nil {
		return err
	}
	a.printSessions(list)
	return nil
}

// parseDifficulty accepts a level name in any case or its position 1-3.
// An empty answer means "any".
func parseDifficulty(s string) (models.Difficulty, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	for i, d := range models.Difficulties {
		if strings.EqualFold(s, string(d)) || s == string(rune('1'+i)) {
			return d, true
		}
	}
	return "", false
}

func difficultyPrompt() string {
	names := make([]string, len(models.Difficulties))
	for i, d := range models.Difficulties {
		names[i] = string(d)
	}
	return "Difficulty (" + strings.Join(names, ", ") + ")"
}

func (a *App) FindSessions(ctx context.Context) error {
	search, err := a.ask("Search text (empty for all)")
	if err != nil {
		return err
	}
	level, err := a.ask(difficultyPrompt() + ", empty for any")
	if err != nil {
		return err
	}
	d, ok := parseDifficulty(level)
	if !ok {
		a.println("Unknown difficulty:", level)
		return nil
	}
	list, err := a.sessionService.Filter(ctx, search, d)
	if err != nil {
		return err
	}
	a.printSessions(list)
	return nil
}

func (a *App) ViewSession(ctx context.Context, id string) error {
	s, err := a.sessionService.Get(ctx, id)
	if err != nil {
		return err
	}
	a.println(sessionDetails(s))
	return nil
}

// sessionForm collects session fields. When cur is not nil its values are
// offered as defaults and an empty image answer keeps the stored image.
func (a *App) sessionForm(cur *models.Session) (models.SessionInput, error) {
	var (
		in  models.SessionInput
		err error
		def models.Session
	)
	if cur != nil {
		def = *cur
	} else {
		def.Difficulty = models.DifficultyIntermediate
		def.Duration = 60
	}

	if in.Title, err = a.askDefault("Title", def.Title); err != nil {
		return in, err
	}
	if cur == nil {
		in.Description, err = GetMultiline(a.reader, "Description", a.out)
	} else {
		in.Description, err = a.askDefault("Description", def.Description)
	}
	if err != nil {
		return in, err
	}
	if in.MainObjective, err = a.askDefault("Main objective", def.MainObjective); err != nil {
		return in, err
	}

	secondary, err := a.askDefault("Secondary objectives (comma separated)", strings.Join(def.SecondaryObjectives, ", "))
	if err != nil {
		return in, err
	}
	in.SecondaryObjectives = validation.ParseObjectives(secondary)

	level, err := a.askDefault(difficultyPrompt(), string(def.Difficulty))
	if err != nil {
		return in, err
	}
	if d, ok := parseDifficulty(level); ok {
		in.Difficulty = d
	} else {
		in.Difficulty = models.Difficulty(level)
	}

	if in.Duration, err = GetInt(a.reader, "Duration (minutes)", def.Duration, a.out); err != nil {
		return in, err
	}

	materials, err := a.askDefault("Materials (use ';' to enter a list)", def.Materials.String())
	if err != nil {
		return in, err
	}
	switch {
	case cur != nil && materials == def.Materials.String():
		in.Materials = def.Materials
	case strings.Contains(materials, ";"):
		in.Materials = models.ListMaterials(splitList(materials)...)
	default:
		in.Materials = models.TextMaterials(materials)
	}

	path, err := a.ask("Image file (optional)")
	if err != nil {
		return in, err
	}
	if path != "" {
		img, err := loadImage(path)
		if err != nil {
			return in, err
		}
		in.ImageData = &img
	}
	return in, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) CreateSession(ctx context.Context) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	in, err := a.sessionForm(nil)
	if err != nil {
		return err
	}
	s, err := a.sessionService.Create(ctx, actor, in)
	if err != nil {
		return err
	}
	a.printf("Session created: %s\n", s.ID)
	return nil
}

func (a *App) EditSession(ctx context.Context, id string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	cur, err := a.sessionService.Get(ctx, id)
	if err != nil {
		return err
	}
	if !cur.OwnedBy(actor) {
		return common.ErrForbidden
	}
	in, err := a.sessionForm(&cur)
	if err != nil {
		return err
	}
	if _, err := a.sessionService.Update(ctx, actor, id, in); err != nil {
		return err
	}
	a.println("Session updated.")
	return nil
}

func (a *App) DeleteSession(ctx context.Context, id string) error {
	actor, err := a.actor()
	if err != nil {
		return err
	}
	s, err := a.sessionService.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.OwnedBy(actor) {
		return common.ErrForbidden
	}
	ok, err := Confirm(a.reader, "Delete session \""+s.Title+"\"?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.sessionService.Delete(ctx, actor, id); err != nil {
		return err
	}
	a.println("Session deleted.")
	return nil
}
