package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/xvierd/trainer-cli/internal/adapters/clock"
	"github.com/xvierd/trainer-cli/internal/adapters/library"
	"github.com/xvierd/trainer-cli/internal/adapters/notification"
	"github.com/xvierd/trainer-cli/internal/adapters/storage"
	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/ports"
	"github.com/xvierd/trainer-cli/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	storage  ports.Storage
	catalog  *library.Catalog
	library  *services.LibraryService
	history  *services.HistoryService
	notifier *notification.Notifier
	config   *config.Config
	logger   *slog.Logger
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices sets up all the required services and adapters.
func initializeServices() error {
	var err error
	app.config, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		app.config = config.DefaultConfig()
		app.logger = newLogger(app.config)
		app.logger.Warn("using default config", "error", err)
	} else {
		app.logger = newLogger(app.config)
	}

	app.notifier = notification.New(&app.config.Notifications, app.logger.With("component", "notifier"))

	if dbPath == "" {
		dbPath = config.GetDBPath(app.config)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.storage, err = storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.catalog, err = library.New(
		library.WithDir(config.GetProgramsDir(app.config)),
		library.WithLogger(app.logger.With("component", "library")),
	)
	if err != nil {
		return fmt.Errorf("failed to load program library: %w", err)
	}

	app.library = services.NewLibraryService(app.catalog, app.storage.Preferences())
	app.history = services.NewHistoryService(app.storage)

	return nil
}

// newSessionService builds a session service for one run of the session screen.
func newSessionService() *services.SessionService {
	svc := services.NewSessionService(app.storage, clock.System{}, services.SessionConfig{
		TickInterval:       time.Duration(app.config.Session.TickInterval),
		ResumeOnForeground: app.config.Session.ResumeOnForeground,
	}, app.logger.With("component", "session"))
	svc.SetCuePlayer(app.notifier)
	return svc
}

// newLogger builds the stderr logger. --verbose forces debug output.
func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.storage != nil {
		err := app.storage.Close()
		app.storage = nil
		return err
	}
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
