package main

import (
	"context"
	"database/sql"
	"fmt"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/internal/masking"
	"loginetl/internal/pipeline"
	"loginetl/internal/sink"
	"loginetl/internal/transform"
	"loginetl/pkg/bootstrap"
	"loginetl/pkg/errors"
	"loginetl/pkg/health"
	"loginetl/pkg/metrics"
	"loginetl/pkg/migrations"
	"loginetl/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	tracerProvider *tracing.TracerProvider
	pusher         *metrics.Pusher
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg.Database, log),
	}
}

// Initialize prepares everything a run needs except the database, which the
// sink dials only once there is something to load.
func (a *App) Initialize(ctx context.Context) error {
	if err := a.initTelemetry(); err != nil {
		return err
	}

	if err := a.InitQueue(ctx); err != nil {
		return fmt.Errorf("failed to initialize queue: %w", err)
	}

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	return nil
}

func (a *App) initTelemetry() error {
	tp, err := tracing.Init(a.Config.Tracing, a.Config.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.Register()
	a.pusher = metrics.NewPusher(a.Config.Metrics.PushgatewayURL, a.Config.Metrics.Job, map[string]string{
		"queue": a.Config.Queue.QueueName,
	})
	return nil
}

func (a *App) RunPipeline(ctx context.Context) (*pipeline.Report, error) {
	if a.Config.Database.RunMigrations {
		if _, err := a.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	hasher, err := masking.NewHasher(a.Config.Masking.HashAlgorithm)
	if err != nil {
		return nil, errors.ErrConfig.WithCause(err)
	}

	connector, err := sink.NewSQLConnector(a.dbConnector.OpenSQL, a.Config.Database, a.Logger)
	if err != nil {
		return nil, errors.ErrConfig.WithCause(err)
	}

	transformer := transform.NewTransformer(hasher, a.Config.Transform, a.Rejects, a.Logger)
	loader := sink.NewSink(sink.NewCircuitBreakerConnector(connector, a.Config.CircuitBreaker), a.Rejects, a.Logger)

	p := pipeline.New(a.Queue, transformer, loader, pipeline.Options{
		MaxMessages:     a.Config.Queue.MaxMessages,
		WaitTimeSeconds: a.Config.Queue.WaitTimeSeconds,
	}, a.Logger)

	return p.Run(ctx)
}

// Migrate applies the embedded schema migrations for the configured driver.
func (a *App) Migrate(ctx context.Context) (uint, error) {
	db, err := a.dbConnector.OpenSQL(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	version, err := migrations.Up(db, a.Config.Database.Driver)
	if err != nil {
		return 0, errors.ErrConnect.WithCause(err).WithMessage("failed to apply migrations")
	}
	return version, nil
}

// Check probes the queue and the database concurrently.
func (a *App) Check(ctx context.Context) (health.Health, error) {
	if err := a.InitQueue(ctx); err != nil {
		return health.Health{}, err
	}

	dsn, err := a.dbConnector.DSN()
	if err != nil {
		return health.Health{}, errors.ErrConfig.WithCause(err)
	}
	db, err := sql.Open(a.Config.Database.Driver, dsn)
	if err != nil {
		return health.Health{}, errors.ErrConfig.WithCause(err)
	}
	defer db.Close()

	registry := health.NewCheckerRegistry()
	registry.Register(health.NewPingChecker(constants.QueueTypeSQS, a.Queue))
	registry.Register(health.NewSQLChecker(a.Config.Database.Driver, db))

	return registry.Check(ctx), nil
}

// Shutdown pushes the run's metrics and releases clients. It runs after
// failed runs too.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.pusher.Push(ctx); err != nil {
		a.Logger.WarnwCtx(ctx, "Failed to push metrics", "error", err)
	}

	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error
		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
			}
		}
		return errs
	})
}
