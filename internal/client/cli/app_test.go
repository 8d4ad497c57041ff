package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/trainingportal/internal/client/backup"
	"github.com/dmitrijs2005/trainingportal/internal/client/config"
	"github.com/dmitrijs2005/trainingportal/internal/client/mirror"
	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/common"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppWithMirror(t *testing.T, m mirror.Mirror, input string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	db, err := store.OpenDatabase(ctx, ":memory:")
	require.NoError(t, err)
	bs, err := backup.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	out := &bytes.Buffer{}
	a := assemble(cfg, db, m, bs, logging.NewDiscardLogger(), bufio.NewReader(strings.NewReader(input)), out)
	require.NoError(t, a.start(ctx))
	t.Cleanup(func() { _ = a.Close() })
	return a, out
}

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()
	return newTestAppWithMirror(t, mirror.NewMemory(), input)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func loginAs(t *testing.T, a *App, pw string) {
	t.Helper()
	stubPassword(t, pw)
	require.NoError(t, a.Login(context.Background()))
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestLogin(t *testing.T) {
	a, out := newTestApp(t, "")

	stubPassword(t, "nope")
	err := a.Login(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())

	loginAs(t, a, "entrenador123")
	assert.True(t, a.isLoggedIn())
	assert.False(t, a.isAdmin())
	assert.Contains(t, out.String(), "Welcome, Entrenador Principal")

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "CADETE")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestCreateSession(t *testing.T) {
	a, out := newTestApp(t, lines(
		"Rondo de porteros",
		"Trabajo de reflejos en espacio reducido",
		"",
		"Reflejos rápidos",
		"agilidad, comunicación",
		"2",
		"45",
		"Conos; Balones",
		"",
	))
	loginAs(t, a, "entrenador123")
	ctx := context.Background()

	require.NoError(t, a.CreateSession(ctx))
	assert.Contains(t, out.String(), "Session created: session_")

	list, err := a.sessionService.List(ctx)
	require.NoError(t, err)
	s := list[len(list)-1]
	assert.Equal(t, "Rondo de porteros", s.Title)
	assert.Equal(t, "Trabajo de reflejos en espacio reducido", s.Description)
	assert.Equal(t, []string{"agilidad", "comunicación"}, s.SecondaryObjectives)
	assert.Equal(t, models.DifficultyIntermediate, s.Difficulty)
	assert.Equal(t, 45, s.Duration)
	assert.Equal(t, models.ListMaterials("Conos", "Balones"), s.Materials)
	assert.Equal(t, "trainer001", s.CreatorID)
	assert.Nil(t, s.ImageData)
}

func TestCreateSession_ValidationIsReported(t *testing.T) {
	a, _ := newTestApp(t, lines("ab", "corta", "", "x", "", "", "5", "", ""))
	loginAs(t, a, "entrenador123")

	err := a.CreateSession(context.Background())
	require.ErrorIs(t, err, common.ErrValidation)
	msg := describe(err)
	assert.True(t, strings.HasPrefix(msg, "Please fix the following:"))
	assert.GreaterOrEqual(t, strings.Count(msg, "\n  - "), 4)
}

func TestEditSession_EmptyAnswersKeepValues(t *testing.T) {
	a, _ := newTestApp(t, strings.Repeat("\n", 8))
	loginAs(t, a, "entrenador123")
	ctx := context.Background()

	before, err := a.sessionService.Get(ctx, "session_001")
	require.NoError(t, err)

	require.NoError(t, a.EditSession(ctx, "session_001"))

	after, err := a.sessionService.Get(ctx, "session_001")
	require.NoError(t, err)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Description, after.Description)
	assert.Equal(t, before.SecondaryObjectives, after.SecondaryObjectives)
	assert.Equal(t, before.Materials, after.Materials)
	assert.Equal(t, before.Duration, after.Duration)
	assert.False(t, after.UpdatedAt.IsZero())
}

func TestEditSession_Forbidden(t *testing.T) {
	a, _ := newTestApp(t, "")
	ctx := context.Background()

	loginAs(t, a, "admin123")
	admin, _ := a.authService.CurrentUser()
	s, err := a.sessionService.Create(ctx, admin, models.SessionInput{
		Title:         "Sesión del club",
		Description:   "Sesión creada por la administración",
		MainObjective: "Planificación",
		Difficulty:    models.DifficultyBeginner,
		Duration:      30,
	})
	require.NoError(t, err)
	require.NoError(t, a.Logout(ctx))

	loginAs(t, a, "entrenador123")
	assert.ErrorIs(t, a.EditSession(ctx, s.ID), common.ErrForbidden)
	assert.ErrorIs(t, a.DeleteSession(ctx, s.ID), common.ErrForbidden)
	assert.ErrorIs(t, a.ViewSession(ctx, "missing"), common.ErrorNotFound)
}

func TestDeleteSession_AsksFirst(t *testing.T) {
	a, _ := newTestApp(t, lines("no", "yes"))
	loginAs(t, a, "entrenador123")
	ctx := context.Background()

	require.NoError(t, a.DeleteSession(ctx, "session_002"))
	_, err := a.sessionService.Get(ctx, "session_002")
	require.NoError(t, err, "answering no keeps the session")

	require.NoError(t, a.DeleteSession(ctx, "session_002"))
	_, err = a.sessionService.Get(ctx, "session_002")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindSessions(t *testing.T) {
	a, out := newTestApp(t, lines("penal", "avanzado", "", "bogus"))
	loginAs(t, a, "entrenador123")
	ctx := context.Background()

	require.NoError(t, a.FindSessions(ctx))
	assert.Contains(t, out.String(), "1 session(s)")

	out.Reset()
	require.NoError(t, a.FindSessions(ctx))
	assert.Contains(t, out.String(), "Unknown difficulty")
}

func TestAddUser_GeneratesPassword(t *testing.T) {
	a, out := newTestApp(t, lines("Lucía Gómez", "INFANTIL", "", "", "Porteros", ""))
	loginAs(t, a, "admin123")
	ctx := context.Background()

	require.NoError(t, a.AddUser(ctx))

	users, err := a.userService.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	u := users[2]
	assert.Equal(t, models.RoleTrainer, u.Role)
	assert.Len(t, u.Password, 12)
	assert.Contains(t, out.String(), "password: "+u.Password)
}

func TestEditUser_OnlyChangedFields(t *testing.T) {
	a, out := newTestApp(t, lines("", "JUVENIL B", "", "", "", "gen"))
	loginAs(t, a, "admin123")
	ctx := context.Background()

	require.NoError(t, a.EditUser(ctx, "trainer001"))

	u, err := a.userService.GetUserByID(ctx, "trainer001")
	require.NoError(t, err)
	assert.Equal(t, "Entrenador Principal", u.Name)
	assert.Equal(t, "JUVENIL B", u.Category)
	assert.Len(t, u.Password, 12)
	assert.Contains(t, out.String(), "New password: "+u.Password)
}

func TestAdminCannotTargetSelf(t *testing.T) {
	a, out := newTestApp(t, "")
	loginAs(t, a, "admin123")
	ctx := context.Background()

	require.NoError(t, a.ToggleUser(ctx, "admin001"))
	require.NoError(t, a.DeleteUser(ctx, "admin001"))
	assert.Contains(t, out.String(), "cannot deactivate your own account")
	assert.Contains(t, out.String(), "cannot delete your own account")

	u, err := a.userService.GetUserByID(ctx, "admin001")
	require.NoError(t, err)
	assert.True(t, u.Active)

	require.NoError(t, a.ToggleUser(ctx, "trainer001"))
	assert.Contains(t, out.String(), "Entrenador Principal deactivated.")
}

func TestExportImport(t *testing.T) {
	a, out := newTestApp(t, lines("yes"))
	loginAs(t, a, "admin123")
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "export.json")

	require.NoError(t, a.Export(ctx, path))
	assert.Contains(t, out.String(), "Exported 2 users and 3 sessions")

	admin, _ := a.authService.CurrentUser()
	require.NoError(t, a.sessionService.Delete(ctx, admin, "session_003"))

	require.NoError(t, a.Import(ctx, path))
	list, err := a.sessionService.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users":"x"}`), 0o600))
	a.reader = rdr("yes\n")
	err = a.Import(ctx, bad)
	assert.ErrorIs(t, err, common.ErrInvalidBundle)
	assert.Equal(t, "The file is not a valid portal export.", describe(err))
}

func TestClearAll_NeedsTwoConfirmations(t *testing.T) {
	a, _ := newTestApp(t, lines("yes", "no", "yes", "yes"))
	loginAs(t, a, "admin123")
	ctx := context.Background()

	require.NoError(t, a.userService.DeleteUser(ctx, "trainer001"))

	require.NoError(t, a.ClearAll(ctx))
	users, err := a.userService.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.True(t, a.isLoggedIn())

	require.NoError(t, a.ClearAll(ctx))
	users, err = a.userService.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.False(t, a.isLoggedIn())
}

func TestBackupAndRestore(t *testing.T) {
	a, out := newTestApp(t, lines("yes"))
	loginAs(t, a, "admin123")
	ctx := context.Background()

	require.NoError(t, a.ListBackups(ctx))
	assert.Contains(t, out.String(), "No backups yet.")

	require.NoError(t, a.Backup(ctx))
	names, err := a.backups.List(ctx)
	require.NoError(t, err)
	require.Len(t, names, 1)

	require.NoError(t, a.userService.DeleteUser(ctx, "trainer001"))
	require.NoError(t, a.Restore(ctx, names[0]))

	users, err := a.userService.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRoot_DevModeShowsTestAccounts(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	a, out := newTestApp(t, "exit\n")
	ctx := context.Background()

	a.Root(ctx)
	assert.NotContains(t, out.String(), "admin123")

	require.NoError(t, a.dataService.SetDevMode(ctx, true))
	a.reader = rdr("exit\n")
	a.Root(ctx)
	assert.Contains(t, out.String(), "admin123")
	assert.Contains(t, out.String(), "entrenador123")
}

func TestRemoteChangesAreAnnounced(t *testing.T) {
	m := mirror.NewMemory()
	a, _ := newTestAppWithMirror(t, m, "")
	b, outB := newTestAppWithMirror(t, m, "")
	stop := b.sync.OnUpdate(b.onRemoteUpdate)
	defer stop()

	loginAs(t, a, "entrenador123")
	a.sync.Wait()

	assert.Contains(t, outB.String(), "[sync] users updated from another device")
	assert.Equal(t, "(online)", b.getStatus())
}

func TestStatus_LocalOnly(t *testing.T) {
	m := mirror.NewMemory()
	m.ProbeErr = assert.AnError
	a, out := newTestAppWithMirror(t, m, "")

	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "local-only")
	assert.Contains(t, out.String(), "Changes are kept on this device only.")
	assert.Equal(t, "(local)", a.getStatus())
}
