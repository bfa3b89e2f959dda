package searchlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
)

// execer is the consumer interface for SQL writes (ISP).
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink inserts entries into a table with columns
// (id, logged_at, query, hits, sort, spatial, origin, language).
type PostgresSink struct {
	db     execer
	insert string
}

// NewPostgresSink creates a sink writing to table.
func NewPostgresSink(conn execer, table string) *PostgresSink {
	return &PostgresSink{
		db: conn,
		insert: "INSERT INTO " + table +
			" (id, logged_at, query, hits, sort, spatial, origin, language)" +
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
	}
}

// Write implements searchlog.Sink.
func (s *PostgresSink) Write(ctx context.Context, e logentry.Entry) error {
	_, err := s.db.Exec(ctx, s.insert,
		e.ID, e.Time.UTC(), e.Query, e.Hits, e.Sort, e.SpatialWKT, e.Origin, e.Language)
	if err != nil {
		return &db.Error{Op: db.OpSQLInsert, Err: err}
	}
	return nil
}

// OpenPool connects to the search log database.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
