package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrStaleSnapshot = errors.New("db: snapshot older than last seen version")
)

// Op constants map to engine command names for error context.
const (
	OpSearch      = "FT.SEARCH"
	OpHGetAll     = "HGETALL"
	OpHMGet       = "HMGET"
	OpHGet        = "HGET"
	OpSMembers    = "SMEMBERS"
	OpXAdd        = "XADD"
	OpBleveSearch = "BLEVE.SEARCH"
	OpBleveOpen   = "BLEVE.OPEN"
	OpBleveIndex  = "BLEVE.INDEX"
	OpSQLInsert   = "SQL.INSERT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
