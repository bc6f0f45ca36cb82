// Package server wires the development backend together: Postgres, the
// migrations, the services and the HTTP API, plus signal-driven shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/til/internal/logging"
	"github.com/dmitrijs2005/til/internal/server/config"
	"github.com/dmitrijs2005/til/internal/server/httpapi"
	"github.com/dmitrijs2005/til/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/til/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.HTTPServer
}

// NewApp connects to the database and applies pending migrations.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, true)

	db, err := repomanager.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	as := services.NewAuthService(db, rm, c)
	fs := services.NewFactService(db, rm)

	srv := httpapi.NewHTTPServer(c.ListenAddr, c.AnonKey, logger, as, fs)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}()

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "Stopped")
	return nil
}
