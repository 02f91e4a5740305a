package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"task-service/pkg/task"
)

// Connect opens and pings a PostgreSQL pool.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenSQLite opens a SQLite database file, or an in-memory database for
// ":memory:".
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	memory := path == ":memory:"
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Open picks the store implementation from the URL scheme and makes sure
// the tasks table exists. postgres:// and postgresql:// use pgx; sqlite://
// takes the rest of the URL as a file path.
func Open(ctx context.Context, url string) (task.Store, error) {
	var store task.Store
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		pool, err := Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		store = task.NewPgStore(pool)
	case strings.HasPrefix(url, "sqlite://"):
		db, err := OpenSQLite(strings.TrimPrefix(url, "sqlite://"))
		if err != nil {
			return nil, err
		}
		store = task.NewSQLiteStore(db)
	default:
		return nil, fmt.Errorf("unsupported database url %q: want postgres:// or sqlite://", redact(url))
	}

	if err := store.EnsureTable(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure tasks table: %w", err)
	}
	return store, nil
}

// redact hides anything that looks like credentials before the host.
func redact(url string) string {
	if i := strings.Index(url, "@"); i >= 0 {
		if j := strings.Index(url, "://"); j >= 0 && j < i {
			return url[:j+3] + "***" + url[i:]
		}
	}
	return url
}
