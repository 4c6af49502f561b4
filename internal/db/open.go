package db

import (
	"context"
	"fmt"

	"task_manager/internal/config"
	"task_manager/internal/logger"
	"task_manager/internal/migrations"
	"task_manager/internal/repository"
	"task_manager/internal/repository/memstore"
	"task_manager/internal/repository/mongostore"
	"task_manager/internal/service"
)

// Stores is the storage backend selected by STORE_DRIVER.
type Stores struct {
	Users service.UserStore
	Tasks service.TaskStore
	Audit service.AuditStore

	Ping  func(ctx context.Context) error
	Close func()
}

// Open connects the configured backend. For postgres it applies the embedded
// migrations when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := migrations.Apply(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied")
		}
		return &Stores{
			Users: repository.NewUserRepository(pool),
			Tasks: repository.NewTaskRepository(pool),
			Audit: repository.NewAuditRepository(pool),
			Ping:  pool.Ping,
			Close: pool.Close,
		}, nil

	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users: store.Users(),
			Tasks: store.Tasks(),
			Audit: store.Audit(),
			Ping:  store.Ping,
			Close: func() { _ = store.Close(context.Background()) },
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		store := memstore.New()
		return &Stores{
			Users: store.Users(),
			Tasks: store.Tasks(),
			Audit: store.Audit(),
			Ping:  store.Ping,
			Close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
