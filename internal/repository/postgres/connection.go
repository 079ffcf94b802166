package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"buildportal/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users       string
	Objects     string
	Assignments string
	Folders     string
	Photos      string
	Videos      string
	BimModels   string
	Comments    string
	Items       string
	Purchases   string
	Portfolio   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:       fmt.Sprintf("%susers", prefix),
		Objects:     fmt.Sprintf("%sobjects", prefix),
		Assignments: fmt.Sprintf("%sobject_assignments", prefix),
		Folders:     fmt.Sprintf("%sfolders", prefix),
		Photos:      fmt.Sprintf("%sphotos", prefix),
		Videos:      fmt.Sprintf("%svideos", prefix),
		BimModels:   fmt.Sprintf("%sbim_models", prefix),
		Comments:    fmt.Sprintf("%scomments", prefix),
		Items:       fmt.Sprintf("%sdownloadable_items", prefix),
		Purchases:   fmt.Sprintf("%spurchases", prefix),
		Portfolio:   fmt.Sprintf("%sportfolio_items", prefix),
	}
}

// All lists every table, children before parents, in the order they can be dropped
func (t *TableNames) All() []string {
	return []string{
		t.Comments,
		t.Purchases,
		t.Photos,
		t.Videos,
		t.BimModels,
		t.Folders,
		t.Assignments,
		t.Objects,
		t.Items,
		t.Portfolio,
		t.Users,
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543 on Supabase) does not
// support prepared statements, so on that port the pool switches to
// QueryExecModeCacheDescribe, which keeps the extended protocol (needed for
// JSONB and numeric encoding) but caches only statement descriptions.
// An explicit ?default_query_exec_mode=... in the URL takes precedence.
//
// Prefixed table names are interpolated before the SQL reaches the server,
// so each environment gets its own statement cache entries.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// Repositories use it so they join a surrounding ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
