// Package database wires the job store's Postgres connection pool and
// applies schema migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
	"go.uber.org/zap"

	"github.com/shacharon/placesearch/internal/pkg/config"
)

//go:embed migrations
var migrationFS embed.FS

const defaultRetries = 5

// DatabaseConfig holds the resolved Postgres connection string.
type DatabaseConfig struct {
	ConnectionURL string
}

// WaitForDB pings the pool with linear backoff until it responds or the
// retry budget is exhausted.
func WaitForDB(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) bool {
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("database connection successful")
			return true
		} else {
			wait := time.Duration(attempt) * 200 * time.Millisecond
			logger.Warn("database ping failed, retrying",
				zap.Int("attempt", attempt), zap.Int("max_attempts", defaultRetries),
				zap.Duration("wait", wait), zap.Error(err))
			if attempt < defaultRetries {
				time.Sleep(wait)
			}
		}
	}
	logger.Error("database connection failed after retries")
	return false
}

// RunMigrations applies the embedded schema migrations with
// golang-migrate/migrate, the teacher's own go.mod dependency — replacing
// the pressly/goose call the retrieved db.go used, which was never declared
// as a dependency at all.
func RunMigrations(databaseURL string, logger *zap.Logger) error {
	logger.Info("running database migrations")

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("sql.Open failed: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.NewWithInstance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate.Up: %w", err)
	}

	logger.Info("database migrations completed successfully")
	return nil
}

// NewDatabaseConfig builds the Postgres connection URL from the process
// configuration.
func NewDatabaseConfig(cfg *config.Config, logger *zap.Logger) (*DatabaseConfig, error) {
	if cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("postgres configuration is missing")
	}

	query := url.Values{}
	query.Set("sslmode", cfg.Postgres.SSLMode)

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(cfg.Postgres.User, cfg.Postgres.Password),
		Host:     fmt.Sprintf("%s:%s", cfg.Postgres.Host, cfg.Postgres.Port),
		Path:     cfg.Postgres.DB,
		RawQuery: query.Encode(),
	}

	logger.Info("database connection url generated", zap.String("host", connURL.Host), zap.String("database", connURL.Path))
	return &DatabaseConfig{ConnectionURL: connURL.String()}, nil
}

// Init builds the pgxpool connection pool, registering the uuid codec so
// UUID-typed columns (candidate_pools.id) scan into google/uuid.UUID.
func Init(connectionURL string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	logger.Info("database connection pool initialized")
	return pool, nil
}
