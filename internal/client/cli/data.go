package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"
)

// exportName is the default export file name for the current day.
func exportName(now time.Time) string {
	return "atm_portal_backup_" + now.UTC().Format("2006-01-02") + ".json"
}

func (a *App) Export(ctx context.Context, path string) error {
	b, err := a.dataService.Export(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		path = exportName(b.Exported.Time)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	a.printf("Exported %d users and %d sessions to %s\n", len(b.Users), len(b.Sessions), path)
	return nil
}

func (a *App) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Importing replaces the current data. Continue?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.dataService.Import(ctx, data); err != nil {
		return err
	}
	a.println("Data imported.")
	return nil
}

func (a *App) ClearAll(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Delete ALL users and sessions and restore the defaults? This cannot be undone.", a.out)
	if err != nil || !ok {
		return err
	}
	ok, err = Confirm(a.reader, "Last confirmation: really continue?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.dataService.ClearAll(ctx); err != nil {
		return err
	}
	a.println("All data cleared and defaults restored. You have been logged out.")
	return nil
}

func (a *App) DevMode(ctx context.Context, arg string) error {
	switch arg {
	case "":
		on, err := a.dataService.DevMode(ctx)
		if err != nil {
			return err
		}
		a.printf("Development mode is %s.\n", onOff(on))
		return nil
	case "on", "off":
		if err := a.dataService.SetDevMode(ctx, arg == "on"); err != nil {
			return err
		}
		a.printf("Development mode %s. Test accounts are shown at startup while it is on.\n", arg)
		return nil
	default:
		a.println("Usage: devmode [on|off]")
		return nil
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *App) Backup(ctx context.Context) error {
	b, err := a.dataService.Export(ctx)
	if err != nil {
		return err
	}
	name, err := a.backups.Create(ctx, b)
	if err != nil {
		return err
	}
	a.printf("Backup written: %s\n", name)
	return nil
}

func (a *App) ListBackups(ctx context.Context) error {
	names, err := a.backups.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.println("No backups yet.")
		return nil
	}
	for _, n := range names {
		a.println(n)
	}
	return nil
}

func (a *App) Restore(ctx context.Context, name string) error {
	raw, err := a.backups.Restore(ctx, name)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Restoring replaces the current data. Continue?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.dataService.Import(ctx, raw); err != nil {
		return err
	}
	a.printf("Restored %s.\n", name)
	return nil
}
