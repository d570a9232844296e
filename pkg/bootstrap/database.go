package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/errors"
	"loginetl/pkg/metrics"
	"loginetl/pkg/retry"
)

type DatabaseConnector struct {
	Config config.DatabaseConfig
	Logger logger.Logger
}

func NewDatabaseConnector(cfg config.DatabaseConfig, log logger.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Config: cfg,
		Logger: log,
	}
}

// DSN renders the driver-specific connection string.
func (dc *DatabaseConnector) DSN() (string, error) {
	cfg := dc.Config
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	timeout := dc.connectTimeout()

	switch cfg.Driver {
	case constants.DriverPostgres:
		query := url.Values{}
		if cfg.SSLMode != "" {
			query.Set("sslmode", cfg.SSLMode)
		}
		query.Set("connect_timeout", strconv.Itoa(int(timeout.Seconds())))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     addr,
			Path:     "/" + cfg.Database,
			RawQuery: query.Encode(),
		}
		return u.String(), nil
	case constants.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.Database
		mc.Timeout = timeout
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func (dc *DatabaseConnector) connectTimeout() time.Duration {
	if dc.Config.ConnectTimeout > 0 {
		return dc.Config.ConnectTimeout
	}
	return constants.DefaultConnectTimeout
}

// OpenSQL opens and pings the database, retrying with exponential backoff.
// Exhausted retries surface as a fatal connect error.
func (dc *DatabaseConnector) OpenSQL(ctx context.Context) (*sql.DB, error) {
	dsn, err := dc.DSN()
	if err != nil {
		return nil, errors.ErrConfig.WithCause(err)
	}

	policy := retry.PolicyFromConfig(dc.Config.Retry)
	var db *sql.DB

	err = retry.RetryWithCallback(ctx, policy, func() error {
		candidate, err := sql.Open(dc.Config.Driver, dsn)
		if err != nil {
			return retry.NewFatalError(fmt.Errorf("failed to open database: %w", err))
		}

		pingCtx, cancel := context.WithTimeout(ctx, dc.connectTimeout())
		defer cancel()

		if err := candidate.PingContext(pingCtx); err != nil {
			candidate.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}

		db = candidate
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues("db_connect").Inc()
		dc.Logger.WarnwCtx(ctx, "Retrying database connection",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"next_delay", nextDelay,
			"error", err,
		)
	})
	if err != nil {
		return nil, errors.ErrConnect.WithCause(err).
			WithDetail("driver", dc.Config.Driver).
			WithDetail("host", dc.Config.Host)
	}

	dc.Logger.InfowCtx(ctx, "Database connected",
		"driver", dc.Config.Driver,
		"host", dc.Config.Host,
		"database", dc.Config.Database,
	)
	return db, nil
}
