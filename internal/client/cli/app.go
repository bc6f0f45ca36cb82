package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/til/internal/client/client"
	"github.com/dmitrijs2005/til/internal/client/config"
	"github.com/dmitrijs2005/til/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/til/internal/client/services"
	"github.com/dmitrijs2005/til/internal/logging"
)

type App struct {
	config    *config.Config
	client    client.Client
	db        *sql.DB
	session   services.SessionStore
	facts     services.FactsViewModel
	factForm  *services.FactForm
	refresher *services.TokenRefresher
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.New(os.Stderr, c.LogLevel, false)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	storage := client.NewMetadataStorage(metadata.NewSQLiteRepository(db))
	apiClient, err := client.NewRESTClient(c.SupabaseURL, c.SupabaseKey,
		client.WithSessionStorage(storage),
		client.WithLogger(log.With("component", "client")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	session := services.NewSessionStore(apiClient, log.With("component", "session"), c.RefreshMargin)

	return &App{
		config:    c,
		client:    apiClient,
		db:        db,
		session:   session,
		facts:     services.NewFactsViewModel(apiClient, log.With("component", "facts")),
		factForm:  services.NewFactForm(),
		refresher: services.NewTokenRefresher(session, c.RefreshCheckInterval, log.With("component", "refresher")),
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

// Run restores the session, loads the list and blocks in the REPL.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.session.Init(ctx); err != nil {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}
	if err := a.refresher.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Today I learned! (type 'help' for commands)")
	a.printHeader()
	_ = a.Refresh(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) close() {
	a.refresher.Stop()
	a.session.Close()
	_ = a.client.Close()
	_ = a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

func (a *App) getStatus() string {
	s := a.facts.CurrentCategory() + " " + string(a.facts.SortKey())
	if cur := a.session.Current(); cur != nil {
		s = cur.User.Email + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) printHeader() {
	if cur := a.session.Current(); cur != nil {
		fmt.Fprintf(a.out, "Welcome, %s\n", cur.User.Email)
		return
	}
	fmt.Fprintln(a.out, "Not logged in. Type 'login' or 'register'.")
}
