// Package database applies the embedded schema migrations and reports
// store readiness.
package database

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const prefixPlaceholder = "{{prefix}}"

// Migrate applies every pending migration. Table names in the SQL files are
// written with a {{prefix}} placeholder, and each prefix keeps its own
// version table, so dev_ and test_ schemas can share one database.
func Migrate(databaseURL, tablePrefix string, logger *slog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbURL, err := migrateURL(databaseURL, tablePrefix)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", &prefixedSource{Driver: src, prefix: tablePrefix}, dbURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.String("table_prefix", tablePrefix),
	)

	return nil
}

// migrateURL rewrites a postgres:// URL for the pgx5 migrate driver and
// points it at the prefix's version table
func migrateURL(databaseURL, tablePrefix string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
	u.Scheme = "pgx5"

	q := u.Query()
	q.Set("x-migrations-table", tablePrefix+"schema_migrations")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// prefixedSource substitutes the table prefix into every migration body
type prefixedSource struct {
	source.Driver
	prefix string
}

func (s *prefixedSource) ReadUp(version uint) (io.ReadCloser, string, error) {
	r, identifier, err := s.Driver.ReadUp(version)
	if err != nil {
		return nil, identifier, err
	}
	body, err := s.rewrite(r)
	return body, identifier, err
}

func (s *prefixedSource) ReadDown(version uint) (io.ReadCloser, string, error) {
	r, identifier, err := s.Driver.ReadDown(version)
	if err != nil {
		return nil, identifier, err
	}
	body, err := s.rewrite(r)
	return body, identifier, err
}

func (s *prefixedSource) rewrite(r io.ReadCloser) (io.ReadCloser, error) {
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read migration: %w", err)
	}
	sql := strings.ReplaceAll(string(raw), prefixPlaceholder, s.prefix)
	return io.NopCloser(bytes.NewBufferString(sql)), nil
}

// ReadinessChecker pings the pool for the health endpoint
type ReadinessChecker struct {
	pool *pgxpool.Pool
}

// NewReadinessChecker creates a readiness check over pool
func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool}
}

// CheckReady returns "ok" or "fail" with a short message
func (c *ReadinessChecker) CheckReady(ctx context.Context) (status string, message string) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := c.pool.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("database unavailable: %v", err)
	}
	return "ok", "connected"
}
