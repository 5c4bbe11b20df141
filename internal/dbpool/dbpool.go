// Package dbpool is a minimal database/sql wrapper exposing the
// original's config surface (max connections, idle timeout) and a
// prepared-statement cache backed by cmap, giving the core a
// realistic non-trivial-key consumer.
package dbpool

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"clib/internal/cmap"
)

// Config mirrors the original's database/config.h fields.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DefaultConfig matches the original's defaults.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: time.Hour,
	}
}

// Pool wraps *sql.DB with a cache of prepared statements keyed by
// query text.
type Pool struct {
	db    *sql.DB
	stmts *cmap.Map[string, *sql.Stmt]
}

// Open opens driverName/dsn and applies cfg, wrapping any error the
// way the original's Error{funcName, content} pair did.
func Open(driverName, dsn string, cfg Config) (*Pool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "dbpool.Open")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "dbpool.Open: ping")
	}

	return &Pool{
		db:    db,
		stmts: cmap.New[string, *sql.Stmt](256, cmap.DefaultHasher[string]()),
	}, nil
}

// Prepare returns a cached prepared statement for query, preparing
// and caching it on first use.
func (p *Pool) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if stmt, ok := p.stmts.Get(query); ok {
		return stmt, nil
	}
	stmt, err := p.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "dbpool.Prepare: %s", query)
	}
	if !p.stmts.Set(query, stmt) {
		// Either the cache is saturated or a concurrent Prepare cached
		// the same query first; this statement still works, it just
		// isn't the one the cache will hand out next time.
		return stmt, nil
	}
	return stmt, nil
}

// DB exposes the underlying *sql.DB for operations this wrapper does
// not cover.
func (p *Pool) DB() *sql.DB { return p.db }

// Close closes the underlying *sql.DB. Cached statements are not
// closed one by one.
func (p *Pool) Close() error {
	if err := p.db.Close(); err != nil {
		return errors.Wrap(err, "dbpool.Close")
	}
	return nil
}
