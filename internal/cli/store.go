package cli

import (
	"context"
	"fmt"

	"wellness/internal/adapter/memory"
	"wellness/internal/adapter/postgres"
	"wellness/internal/adapter/sqlite"
	"wellness/internal/app"
	"wellness/internal/config"
	"wellness/internal/domain"
	"wellness/internal/logger"
)

// Store is what every backend provides.
type Store interface {
	domain.UserDirectory
	domain.ChallengeCatalog
	domain.ActivityStore
	domain.EnrollmentStore
	Ping(ctx context.Context) error
	Close() error
}

// migrator is implemented by persistent backends.
type migrator interface {
	Migrate(ctx context.Context) error
}

// OpenStore opens the backend selected by cfg.Store.
func OpenStore(cfg config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		return sqlite.New(cfg.SQLitePath)
	case config.StorePostgres:
		return postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Services bundles the application services built over one store.
type Services struct {
	Users       *app.UserService
	Challenges  *app.ChallengeService
	Enrollments *app.EnrollmentService
	Activities  *app.ActivityService
}

// NewServices builds the services over store.
func NewServices(store Store, cfg config.Config, clock domain.Clock, log *logger.Logger) Services {
	rec := app.NewReconciler(store, store, store, clock, log,
		app.WithMaxRetries(cfg.ReconcileMaxRetries),
		app.WithWorkers(cfg.ReconcileWorkers),
	)
	return Services{
		Users:       app.NewUserService(store, clock),
		Challenges:  app.NewChallengeService(store, clock),
		Enrollments: app.NewEnrollmentService(store, store, store, clock, log),
		Activities:  app.NewActivityService(store, store, rec, clock, log),
	}
}
