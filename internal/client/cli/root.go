package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/services"
)

func (a *App) getStatus() string {
	s := "local"
	if a.sync.Online() {
		s = "online"
	}
	if u, ok := a.authService.CurrentUser(); ok {
		s = fmt.Sprintf("%s %s", u.Name, s)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {
	a.println("Training portal (type 'help' for commands)")
	a.showDevCredentials(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// showDevCredentials prints the seed accounts while development mode is on.
func (a *App) showDevCredentials(ctx context.Context) {
	on, err := a.dataService.DevMode(ctx)
	if err != nil || !on {
		return
	}
	a.println("Development mode: test accounts")
	for _, u := range services.SeedUsers() {
		a.printf("  %-12s %s\n", u.Role.Label(), u.Password)
	}
}

// Status prints the sync state of each collection.
func (a *App) Status(context.Context) error {
	for _, c := range models.Collections {
		st := a.sync.State(c)
		a.printf("%-9s %s\n", c, st)
	}
	if !a.sync.Online() {
		a.println("Changes are kept on this device only.")
	}
	return nil
}
