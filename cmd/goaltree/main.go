package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/goaltree/internal/api"
	"github.com/alexanderramin/goaltree/internal/cli"
	"github.com/alexanderramin/goaltree/internal/config"
	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/engine"
	"github.com/alexanderramin/goaltree/internal/gateway"
	"github.com/alexanderramin/goaltree/internal/observability"
	"github.com/alexanderramin/goaltree/internal/repository"
	"github.com/alexanderramin/goaltree/internal/store"
	"github.com/alexanderramin/goaltree/internal/view"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(cfg.TraceExporter, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var (
		gw       gateway.Gateway
		database *sql.DB
	)
	if cfg.Remote != "" {
		gw = gateway.NewRemote(cfg.Remote, cfg.User, time.Duration(cfg.RemoteTimeoutMs)*time.Millisecond)
	} else {
		database, err = db.OpenDB(cfg.DB)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		if err := ensureUser(ctx, database, cfg.Principal()); err != nil {
			return err
		}
		gw = gateway.NewLocal(database, db.NewSQLiteUnitOfWork(database), cfg.Principal())
	}

	opts := []engine.Option{
		engine.WithOwner(cfg.User),
		engine.WithScope(gateway.Scope{OwnerID: cfg.User}),
		engine.WithMetrics(metrics),
	}
	if cfg.LogUseCases {
		opts = append(opts, engine.WithObserver(observability.NewSlogUseCaseObserver(logger)))
	}
	eng := engine.New(store.New(), gw, opts...)
	if err := eng.Reload(ctx); err != nil {
		return fmt.Errorf("loading goals: %w", err)
	}

	app := &cli.App{
		Engine: eng,
		Logger: logger,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}
	if cfg.ViewState != "" {
		vs, err := view.OpenBoltStateStore(cfg.ViewState)
		if err != nil {
			logger.Warn("view state unavailable; expanded goals will not be remembered", "error", err)
		} else {
			defer vs.Close()
			app.ViewState = vs
		}
	}
	if database != nil {
		app.Serve = func(ctx context.Context) error {
			router, err := api.NewRouter(api.Deps{
				DB:       database,
				Logger:   logger,
				Metrics:  metrics,
				Gatherer: reg,
			})
			if err != nil {
				return err
			}
			return api.Serve(ctx, cfg.Listen, router, logger)
		}
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// ensureUser registers the configured principal on first use so its goals
// satisfy the owner foreign key.
func ensureUser(ctx context.Context, database *sql.DB, p domain.Principal) error {
	users := repository.NewSQLiteUserRepo(database)
	_, err := users.GetByID(ctx, p.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("looking up user %s: %w", p.UserID, err)
	}
	return users.Create(ctx, &domain.User{ID: p.UserID, Role: p.Role})
}
