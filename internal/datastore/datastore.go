// Package datastore opens the configured storage backend and exposes the
// store interfaces the services consume.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/repository"
	"github.com/insightguardian/insightguardian/pkg/repository/memstore"
	"github.com/insightguardian/insightguardian/pkg/repository/mongostore"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

// Backend bundles the stores of one storage driver.
type Backend struct {
	Driver        string
	Accounts      auth.AccountStore
	Employees     workspace.EmployeeStore
	Subscriptions workspace.SubscriptionStore

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping checks that the backend is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases the backend's connections.
func (b *Backend) Close(ctx context.Context) error {
	return b.close(ctx)
}

// Open connects to the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreDriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return Memory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Memory returns a backend over a fresh in-memory store.
func Memory() *Backend {
	store := memstore.New()
	return &Backend{
		Driver:        config.StoreDriverMemory,
		Accounts:      store,
		Employees:     store,
		Subscriptions: store,
		ping:          store.Ping,
		close:         store.Close,
	}
}

// Postgres returns a backend over an open database handle.
func Postgres(db *sql.DB) *Backend {
	return &Backend{
		Driver:        config.StoreDriverPostgres,
		Accounts:      repository.NewAccountsRepository(db),
		Employees:     repository.NewEmployeesRepository(db),
		Subscriptions: repository.NewSubscriptionsRepository(db),
		ping:          db.PingContext,
		close:         func(context.Context) error { return db.Close() },
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if cfg.DBMigrate {
		if err := repository.RunMigrations(cfg.PostgresURL()); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	db, err := repository.NewDB(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database", "driver", config.StoreDriverPostgres, "host", cfg.DBHost, "db", cfg.DBName)

	return Postgres(db), nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	store, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database", "driver", config.StoreDriverMongo, "db", cfg.MongoDB)

	return &Backend{
		Driver:        config.StoreDriverMongo,
		Accounts:      store,
		Employees:     store,
		Subscriptions: store,
		ping:          store.Ping,
		close:         store.Close,
	}, nil
}
