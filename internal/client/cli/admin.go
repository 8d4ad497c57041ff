package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/services"
)

func (a *App) ListUsers(ctx context.Context) error {
	users, err := a.userService.GetUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		a.println(userLine(u))
	}
	a.printf("%d user(s)\n", len(users))
	return nil
}

func parseRole(s string) (models.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrador":
		return models.RoleAdmin, true
	case "trainer", "entrenador":
		return models.RoleTrainer, true
	}
	return models.Role(s), false
}

func (a *App) AddUser(ctx context.Context) error {
	var (
		in  models.NewUser
		err error
	)
	if in.Name, err = a.ask("Name"); err != nil {
		return err
	}
	if in.Category, err = a.ask("Category"); err != nil {
		return err
	}
	role, err := a.askDefault("Role (admin, trainer)", string(models.RoleTrainer))
	if err != nil {
		return err
	}
	in.Role, _ = parseRole(role)
	if in.Email, err = a.ask("Email (optional)"); err != nil {
		return err
	}
	if in.Specialty, err = a.ask("Specialty (optional)"); err != nil {
		return err
	}
	if in.Password, err = a.ask("Password (empty to generate one)"); err != nil {
		return err
	}
	if in.Password == "" {
		in.Password = a.userService.GeneratePassword()
	}

	u, err := a.userService.AddUser(ctx, in)
	if err != nil {
		return err
	}
	a.printf("User created. Share these credentials:\n  name:     %s\n  category: %s\n  password: %s\n", u.Name, u.Category, u.Password)
	return nil
}

// changed returns a pointer to answer when it differs from cur.
func changed(answer, cur string) *string {
	if answer == cur {
		return nil
	}
	return &answer
}

func (a *App) EditUser(ctx context.Context, id string) error {
	u, err := a.userService.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	patch := models.UserPatch{ID: id}
	ask := func(prompt, cur string) (*string, error) {
		s, err := a.askDefault(prompt, cur)
		if err != nil {
			return nil, err
		}
		return changed(s, cur), nil
	}

	if patch.Name, err = ask("Name", u.Name); err != nil {
		return err
	}
	if patch.Category, err = ask("Category", u.Category); err != nil {
		return err
	}
	role, err := a.askDefault("Role (admin, trainer)", string(u.Role))
	if err != nil {
		return err
	}
	if r, _ := parseRole(role); r != u.Role {
		if self, ok := a.authService.CurrentUser(); ok && self.ID == id {
			a.println("You cannot change your own role.")
		} else {
			patch.Role = &r
		}
	}
	if patch.Email, err = ask("Email", u.Email); err != nil {
		return err
	}
	if patch.Specialty, err = ask("Specialty", u.Specialty); err != nil {
		return err
	}
	pw, err := a.ask("New password (empty keeps current, 'gen' generates one)")
	if err != nil {
		return err
	}
	switch pw {
	case "":
	case "gen":
		gen := a.userService.GeneratePassword()
		patch.Password = &gen
	default:
		patch.Password = &pw
	}

	updated, err := a.userService.UpdateUser(ctx, patch)
	if err != nil {
		return err
	}
	a.println("User updated.")
	if patch.Password != nil {
		a.printf("New password: %s\n", updated.Password)
	}
	return nil
}

// refuseSelf blocks account operations an admin must not run on themselves.
func (a *App) refuseSelf(id, what string) bool {
	if self, ok := a.authService.CurrentUser(); ok && self.ID == id {
		a.printf("You cannot %s your own account.\n", what)
		return true
	}
	return false
}

func (a *App) ToggleUser(ctx context.Context, id string) error {
	if a.refuseSelf(id, "deactivate") {
		return nil
	}
	u, err := a.userService.ToggleActive(ctx, id)
	if err != nil {
		return err
	}
	state := "activated"
	if !u.Active {
		state = "deactivated"
	}
	a.printf("%s %s.\n", u.Name, state)
	return nil
}

func (a *App) DeleteUser(ctx context.Context, id string) error {
	if a.refuseSelf(id, "delete") {
		return nil
	}
	u, err := a.userService.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete user %q? Their sessions are kept.", u.Name), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.userService.DeleteUser(ctx, id); err != nil {
		return err
	}
	a.println("User deleted.")
	return nil
}

func (a *App) GeneratePassword(context.Context) error {
	a.println(a.userService.GeneratePassword())
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	us, err := a.userService.Stats(ctx)
	if err != nil {
		return err
	}
	ps, err := a.dataService.PortalStats(ctx)
	if err != nil {
		return err
	}

	a.printf("Users:    %d total, %d active (%d admins, %d trainers)\n", us.Total, us.Active, us.Admins, us.Trainers)
	a.printf("          %d signed in today, %d with sessions\n", us.AccessToday, us.WithSessions)
	a.printf("Sessions: %d total, %d created today, %d min average\n", ps.TotalSessions, ps.SessionsToday, ps.AverageDuration)
	for _, d := range models.Difficulties {
		a.printf("          %-13s %d\n", d, ps.DifficultyBreakdown[d])
	}
	return nil
}

func parsePeriod(s string) (services.Period, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return services.PeriodAll, true
	case "today":
		return services.PeriodToday, true
	case "week", "thisweek":
		return services.PeriodThisWeek, true
	}
	return "", false
}

// Report lists sessions by creation period, also matching the creator's name.
func (a *App) Report(ctx context.Context) error {
	period, err := a.askDefault("Period (all, today, week)", "all")
	if err != nil {
		return err
	}
	p, ok := parsePeriod(period)
	if !ok {
		a.println("Unknown period:", period)
		return nil
	}
	search, err := a.ask("Search text, including creator (empty for all)")
	if err != nil {
		return err
	}
	list, err := a.sessionService.AdminFilter(ctx, p, search)
	if err != nil {
		return err
	}
	a.printSessions(list)
	return nil
}
