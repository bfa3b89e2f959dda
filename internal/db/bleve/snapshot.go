package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// Compile-time check: Manager implements snapshot.Manager.
var _ snapshot.Manager = (*Manager)(nil)

// generation is one published index of a language. It is closed once it
// has been replaced and no handle references it.
type generation struct {
	index   bleve.Index
	version int64
	refs    int
	retired bool
	closed  bool
}

// Manager publishes per-language index generations and pins them to
// handles until release.
type Manager struct {
	def      *db.IndexDefinition
	window   int
	fallback string
	logger   *zap.Logger

	mu      sync.Mutex
	version int64
	current map[string]*generation
	aliases map[string]bleve.IndexAlias
	active  atomic.Int64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFallbackLanguage sets the language used when a language has no index.
func WithFallbackLanguage(lang string) ManagerOption {
	return func(m *Manager) { m.fallback = lang }
}

// WithWindow sets the candidate window of searchers.
func WithWindow(n int) ManagerOption {
	return func(m *Manager) { m.window = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates an empty manager.
func NewManager(def *db.IndexDefinition, opts ...ManagerOption) *Manager {
	m := &Manager{
		def:     def,
		window:  DefaultWindow,
		logger:  zap.NewNop(),
		current: make(map[string]*generation),
		aliases: make(map[string]bleve.IndexAlias),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish makes idx the current generation of language and returns its
// version. The replaced generation closes when its last handle is released.
func (m *Manager) Publish(language string, idx bleve.Index) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	g := &generation{index: idx, version: m.version}
	old := m.current[language]
	m.current[language] = g

	if alias, ok := m.aliases[language]; ok {
		var out []bleve.Index
		if old != nil {
			out = []bleve.Index{old.index}
		}
		alias.Swap([]bleve.Index{idx}, out)
	} else {
		m.aliases[language] = bleve.NewIndexAlias(idx)
	}

	if old != nil {
		old.retired = true
		m.closeIfIdle(old)
	}
	m.logger.Info("index published", zap.String("language", language), zap.Int64("version", g.version))
	return g.version
}

// OpenDir opens an on-disk index and publishes it for language.
func (m *Manager) OpenDir(language, path string) (int64, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return 0, &db.Error{Op: db.OpBleveOpen, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return m.Publish(language, idx), nil
}

// LoadDir publishes every index under root. Each subdirectory is named
// after the language it serves.
func (m *Manager) LoadDir(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, &db.Error{Op: db.OpBleveOpen, Err: err}
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := m.OpenDir(e.Name(), filepath.Join(root, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Acquire implements snapshot.Manager.
func (m *Manager) Acquire(_ context.Context, language string, lastVersion int64) (*snapshot.Handle, error) {
	m.mu.Lock()
	g := m.current[language]
	if g == nil && m.fallback != "" {
		g = m.current[m.fallback]
	}
	if g == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("index for language %q: %w", language, db.ErrKeyNotFound)
	}
	if g.version < lastVersion {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: version %d < %d", db.ErrStaleSnapshot, g.version, lastVersion)
	}
	g.refs++
	m.mu.Unlock()

	m.active.Add(1)
	s := NewSearcher(g.index, m.def, m.window, g.version)
	return snapshot.NewHandle(s, m.def, g.version, language, func() { m.unref(g) }), nil
}

// Release implements snapshot.Manager.
func (m *Manager) Release(h *snapshot.Handle) error {
	return h.Release()
}

// Active returns the number of unreleased handles.
func (m *Manager) Active() int64 { return m.active.Load() }

// DocCount returns the document count of the current generation of language.
func (m *Manager) DocCount(language string) (uint64, error) {
	m.mu.Lock()
	alias, ok := m.aliases[language]
	m.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("index for language %q: %w", language, db.ErrKeyNotFound)
	}
	return alias.DocCount()
}

// Ping reports whether at least one language is published.
func (m *Manager) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.current) == 0 {
		return fmt.Errorf("no index published: %w", db.ErrIndexNotFound)
	}
	return nil
}

// Close retires every generation. Generations still held close on release.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for language, g := range m.current {
		g.retired = true
		m.closeIfIdle(g)
		delete(m.current, language)
	}
	return nil
}

func (m *Manager) unref(g *generation) {
	m.active.Add(-1)
	m.mu.Lock()
	defer m.mu.Unlock()
	g.refs--
	m.closeIfIdle(g)
}

// closeIfIdle must be called with mu held.
func (m *Manager) closeIfIdle(g *generation) {
	if !g.retired || g.refs > 0 || g.closed {
		return
	}
	g.closed = true
	if err := g.index.Close(); err != nil {
		m.logger.Warn("close retired index", zap.Int64("version", g.version), zap.Error(err))
	}
}
