package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// Compile-time check: Manager implements snapshot.Manager.
var _ snapshot.Manager = (*Manager)(nil)

// Snapshot pointer hash fields.
const (
	pointerIndex   = "index"
	pointerVersion = "version"
)

// Manager resolves per-language snapshot pointers. The hash
// <prefix>snapshot:<lang> names the FT index currently serving a language
// and its version; the indexer swaps it atomically on publish.
type Manager struct {
	store    *Store
	def      *db.IndexDefinition
	prefix   string
	fallback string
	window   int
	active   atomic.Int64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPrefix sets the key prefix of pointer hashes.
func WithPrefix(prefix string) ManagerOption {
	return func(m *Manager) { m.prefix = prefix }
}

// WithFallbackLanguage sets the language tried when a language has no pointer.
func WithFallbackLanguage(lang string) ManagerOption {
	return func(m *Manager) { m.fallback = lang }
}

// WithWindow sets the candidate window of searchers.
func WithWindow(n int) ManagerOption {
	return func(m *Manager) { m.window = n }
}

// NewManager creates a snapshot manager.
func NewManager(store *Store, def *db.IndexDefinition, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, def: def, window: DefaultWindow}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire implements snapshot.Manager.
func (m *Manager) Acquire(ctx context.Context, language string, lastVersion int64) (*snapshot.Handle, error) {
	index, version, err := m.pointer(ctx, language)
	if errors.Is(err, db.ErrKeyNotFound) && m.fallback != "" && language != m.fallback {
		index, version, err = m.pointer(ctx, m.fallback)
	}
	if err != nil {
		return nil, err
	}
	if version < lastVersion {
		return nil, fmt.Errorf("%w: %s version %d < %d", db.ErrStaleSnapshot, index, version, lastVersion)
	}

	m.active.Add(1)
	s := NewSearcher(m.store, index, m.def, m.window, version)
	return snapshot.NewHandle(s, m.def, version, language, func() { m.active.Add(-1) }), nil
}

// Release implements snapshot.Manager.
func (m *Manager) Release(h *snapshot.Handle) error {
	return h.Release()
}

// Active returns the number of unreleased handles.
func (m *Manager) Active() int64 { return m.active.Load() }

// Ping checks the engine connection.
func (m *Manager) Ping(ctx context.Context) error { return m.store.Ping(ctx) }

func (m *Manager) pointer(ctx context.Context, language string) (string, int64, error) {
	key := m.prefix + "snapshot:" + language
	h, err := m.store.HGetAll(ctx, key)
	if err != nil {
		return "", 0, err
	}
	index := h[pointerIndex]
	if index == "" {
		return "", 0, fmt.Errorf("snapshot pointer %s: %w", key, db.ErrKeyNotFound)
	}
	var version int64
	if v := h[pointerVersion]; v != "" {
		version, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", 0, fmt.Errorf("snapshot pointer %s: parse version: %w", key, err)
		}
	}
	return index, version, nil
}
