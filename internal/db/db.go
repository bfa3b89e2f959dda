package db

import (
	"context"
	"time"
)

// Store is the connection facade of a server-side engine.
type Store interface {
	Pinger
	HashReader
	SetReader
	StreamWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashReader reads stored document and pointer hashes.
type HashReader interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	HGet(ctx context.Context, key, field string) (string, error)
}

// SetReader reads set members.
type SetReader interface {
	SMembers(ctx context.Context, key string) ([]string, error)
}

// StreamWriter appends entries to a stream.
type StreamWriter interface {
	XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error)
}
