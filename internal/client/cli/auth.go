package cli

import (
	"context"

	"github.com/dmitrijs2005/trainingportal/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login asks for a password and signs in the first active account that
// uses it. The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.Wipe(password)

	u, err := a.authService.Authenticate(ctx, string(password))
	if err != nil {
		return err
	}
	a.printf("Welcome, %s (%s)\n", u.Name, u.Role.Label())
	return nil
}

func (a *App) Logout(context.Context) error {
	a.authService.Logout()
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	u, ok := a.authService.CurrentUser()
	if !ok {
		a.println("Not logged in.")
		return nil
	}
	a.printf("%s\n  role:      %s\n  category:  %s\n", u.Name, u.Role.Label(), u.Category)
	if u.Email != "" {
		a.printf("  email:     %s\n", u.Email)
	}
	if u.Specialty != "" {
		a.printf("  specialty: %s\n", u.Specialty)
	}
	a.printf("  last seen: %s\n", u.LastAccess)
	return nil
}

