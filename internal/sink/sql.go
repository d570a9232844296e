package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"loginetl/internal/config"
	"loginetl/internal/constants"
	"loginetl/internal/logger"
	"loginetl/pkg/metrics"
	"loginetl/pkg/models"
	"loginetl/pkg/ratelimit"
)

// Dialect captures the placeholder syntax of a driver.
type Dialect struct {
	Name        string
	Placeholder func(position int) string
}

var (
	Postgres = Dialect{
		Name:        constants.DriverPostgres,
		Placeholder: func(position int) string { return fmt.Sprintf("$%d", position) },
	}
	MySQL = Dialect{
		Name:        constants.DriverMySQL,
		Placeholder: func(int) string { return "?" },
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case constants.DriverPostgres:
		return Postgres, nil
	case constants.DriverMySQL:
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// InsertStatement renders the single-row insert for table.
func (d Dialect) InsertStatement(table string) string {
	placeholders := make([]string, len(models.Columns))
	for i := range models.Columns {
		placeholders[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(models.Columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// OpenFunc dials the database. It is called at most once per session.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

type SQLConnector struct {
	open         OpenFunc
	dialect      Dialect
	queryTimeout time.Duration
	limiter      *ratelimit.Limiter
	logger       logger.Logger
}

func NewSQLConnector(open OpenFunc, cfg config.DatabaseConfig, log logger.Logger) (*SQLConnector, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = constants.DefaultQueryTimeout
	}

	return &SQLConnector{
		open:         open,
		dialect:      dialect,
		queryTimeout: timeout,
		limiter:      ratelimit.NewLimiter(cfg.MaxInsertsPerSecond),
		logger:       log,
	}, nil
}

// Open dials the database and pins a single connection for the session.
func (c *SQLConnector) Open(ctx context.Context) (Session, error) {
	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}

	c.logger.DebugwCtx(ctx, "Database session opened", "driver", c.dialect.Name)

	return &sqlSession{
		db:           db,
		conn:         conn,
		dialect:      c.dialect,
		statement:    c.dialect.InsertStatement(constants.TargetTable),
		queryTimeout: c.queryTimeout,
		limiter:      c.limiter,
	}, nil
}

type sqlSession struct {
	db           *sql.DB
	conn         *sql.Conn
	dialect      Dialect
	statement    string
	queryTimeout time.Duration
	limiter      *ratelimit.Limiter
}

func (s *sqlSession) Insert(ctx context.Context, rec models.CanonicalRecord) (err error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.ObserveDatabaseQuery(s.dialect.Name, "insert", status, time.Since(start))
	}()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.statement, rec.Values(constants.DateLayout)...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("insert failed: %w (rollback failed: %v)", err, rbErr)
		}
		return fmt.Errorf("insert failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqlSession) Close() error {
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}
