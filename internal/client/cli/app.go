package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/trainingportal/internal/client/backup"
	"github.com/dmitrijs2005/trainingportal/internal/client/config"
	"github.com/dmitrijs2005/trainingportal/internal/client/mirror"
	"github.com/dmitrijs2005/trainingportal/internal/client/models"
	"github.com/dmitrijs2005/trainingportal/internal/client/services"
	"github.com/dmitrijs2005/trainingportal/internal/client/store"
	"github.com/dmitrijs2005/trainingportal/internal/client/syncer"
	"github.com/dmitrijs2005/trainingportal/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger

	db     *sql.DB
	mirror mirror.Mirror
	sync   *syncer.Syncer

	authService    services.AuthService
	userService    services.UserService
	sessionService services.SessionService
	dataService    services.DataService
	backups        *backup.Service

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

// NewApp opens the local store, seeds it on first run and starts syncing
// with the configured mirror.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := store.OpenDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	m, err := mirror.New(ctx, mirror.Options{
		Kind:            c.MirrorKind,
		BaseURL:         c.MirrorURL,
		HealthAddr:      c.MirrorHealthAddr,
		ProjectID:       c.FirestoreProject,
		Root:            c.FirestoreRoot,
		CredentialsFile: c.FirestoreCredentials,
	}, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	bs, err := newBackupStore(ctx, c)
	if err != nil {
		m.Close()
		db.Close()
		return nil, err
	}

	a := assemble(c, db, m, bs, log, bufio.NewReader(os.Stdin), os.Stdout)
	if err := a.start(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newBackupStore(ctx context.Context, c *config.Config) (backup.Store, error) {
	if c.S3Enabled() {
		return backup.NewS3Store(ctx, backup.S3Options{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			Prefix:    c.S3Prefix,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
	}
	return backup.NewFileStore(c.BackupDir)
}

func assemble(c *config.Config, db *sql.DB, m mirror.Mirror, bs backup.Store, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	st := store.New(db, log)
	marker := store.NewMemoryMarkerStore()
	sy := syncer.New(st, m, log, syncer.Options{
		ProbeTimeout:   c.ProbeTimeout,
		NetworkTimeout: c.NetworkTimeout,
	})

	return &App{
		config:         c,
		log:            log.With("module", "cli"),
		db:             db,
		mirror:         m,
		sync:           sy,
		authService:    services.NewAuthService(st, marker, sy, log),
		userService:    services.NewUserService(st, sy, c.Rules, log),
		sessionService: services.NewSessionService(st, sy, c.Rules, log),
		dataService:    services.NewDataService(st, marker, sy, log),
		backups:        backup.NewService(bs, backup.Options{MaxBackups: c.MaxBackups, Passphrase: c.BackupPassphrase}, log),
		reader:         r,
		out:            w,
	}
}

// start seeds missing collections before the first sync, so seeds never
// overwrite what the mirror already holds.
func (a *App) start(ctx context.Context) error {
	if err := a.dataService.EnsureSeed(ctx); err != nil {
		return err
	}
	a.sync.Start(ctx)
	return nil
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	u, ok := a.authService.CurrentUser()
	return ok && u.IsAdmin()
}

func (a *App) onRemoteUpdate(c models.Collection) {
	a.println()
	a.printf("[sync] %s updated from another device\n", c)
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	stop := a.sync.OnUpdate(a.onRemoteUpdate)
	defer stop()
	a.Root(ctx)
}

// Close stops syncing and releases the mirror and the database.
func (a *App) Close() error {
	a.sync.Close()
	return errors.Join(a.mirror.Close(), a.db.Close())
}
