package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"model_catalog/internal/models"
)

// DB wraps the database connection and provides health checks
type DB struct {
	conn *sqlx.DB

	entryCache *LRUCache[*models.CatalogEntry]
}

// DBConfig holds database configuration
type DBConfig struct {
	// DSN is a lib/pq connection string or URL
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	EntryCacheSize int
	EntryCacheTTL  time.Duration
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() DBConfig {
	return DBConfig{
		DSN: "postgres://postgres@localhost:5432/model_catalog?sslmode=disable",

		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,

		EntryCacheSize: 256,
		EntryCacheTTL:  5 * time.Minute,
	}
}

// NewDB connects to Postgres and configures the pool
func NewDB(cfg DBConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{
		conn:       conn,
		entryCache: NewLRUCache[*models.CatalogEntry](cfg.EntryCacheSize, cfg.EntryCacheTTL),
	}, nil
}

// Close closes the database connection and clears caches
func (db *DB) Close() error {
	db.entryCache.Clear()
	return db.conn.Close()
}

// Ping checks that the database is reachable and answers queries
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}
	return nil
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	id           UUID PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	model_id     TEXT NOT NULL,
	bedrock      JSONB NOT NULL,
	llm_config   JSONB,
	model_kwargs JSONB,
	enabled      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate creates the catalog tables when they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, catalogSchema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

// DBStats reports pool and cache statistics
type DBStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`

	EntryCacheStats CacheStats `json:"entry_cache"`
}

// GetStats returns current database and cache statistics
func (db *DB) GetStats() DBStats {
	stats := db.conn.Stats()

	return DBStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		EntryCacheStats:    db.entryCache.GetStats(),
	}
}

// Conn returns the underlying sqlx connection
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// NewCatalogRepository creates a catalog repository sharing the entry cache
func (db *DB) NewCatalogRepository() *CatalogRepository {
	return NewCatalogRepository(db)
}
