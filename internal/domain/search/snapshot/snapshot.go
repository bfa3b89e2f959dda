// Package snapshot defines versioned index snapshot handles and the engine
// operations available while a handle is held.
package snapshot

import (
	"context"
	"sync/atomic"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/sortkey"
)

// Params describes one execution pass.
type Params struct {
	Query  *query.Compiled
	Filter filter.Filter
	Sort   sortkey.Spec
	// Limit is the number of top hits to return, counted from rank 0.
	Limit int
	// Facets are counted over the same filtered match set when non-empty.
	Facets []facet.Request
}

// Searcher executes queries against one snapshot.
type Searcher interface {
	Search(ctx context.Context, p Params) (*result.Ranked, error)
	// Fetch returns stored fields of a document. nil fields means all.
	Fetch(ctx context.Context, ref string, fields []string) (result.Fields, error)
}

// Taxonomy reports which category paths a snapshot can count.
type Taxonomy interface {
	Has(path string) bool
}

// Manager hands out snapshot handles.
type Manager interface {
	// Acquire returns a handle for language. Passing the last seen version
	// lets the manager reuse state when nothing changed; the returned
	// version is never older than lastVersion.
	Acquire(ctx context.Context, language string, lastVersion int64) (*Handle, error)
	// Release returns the handle. Releasing twice fails with ErrHandleReleased.
	Release(h *Handle) error
}

// Handle is exclusively owned by one search call until released.
type Handle struct {
	searcher  Searcher
	taxonomy  Taxonomy
	version   int64
	language  string
	released  atomic.Bool
	onRelease func()
}

// NewHandle creates a handle. onRelease runs once on the first Release.
func NewHandle(s Searcher, t Taxonomy, version int64, language string, onRelease func()) *Handle {
	return &Handle{searcher: s, taxonomy: t, version: version, language: language, onRelease: onRelease}
}

// Version returns the snapshot version token.
func (h *Handle) Version() int64 { return h.version }

// Language returns the language the handle was acquired for.
func (h *Handle) Language() string { return h.language }

// Taxonomy returns the taxonomy view of the snapshot.
func (h *Handle) Taxonomy() Taxonomy { return h.taxonomy }

// Released reports whether Release was called.
func (h *Handle) Released() bool { return h.released.Load() }

// Release marks the handle released and runs the release hook once.
func (h *Handle) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return domain.ErrHandleReleased
	}
	if h.onRelease != nil {
		h.onRelease()
	}
	return nil
}

// Search executes p unless the handle was released.
func (h *Handle) Search(ctx context.Context, p Params) (*result.Ranked, error) {
	if h.Released() {
		return nil, domain.ErrHandleReleased
	}
	return h.searcher.Search(ctx, p)
}

// Fetch reads stored fields unless the handle was released.
func (h *Handle) Fetch(ctx context.Context, ref string, fields []string) (result.Fields, error) {
	if h.Released() {
		return nil, domain.ErrHandleReleased
	}
	return h.searcher.Fetch(ctx, ref, fields)
}

// StaticTaxonomy is a fixed set of category paths.
type StaticTaxonomy map[string]bool

// NewStaticTaxonomy builds a taxonomy from paths.
func NewStaticTaxonomy(paths ...string) StaticTaxonomy {
	t := make(StaticTaxonomy, len(paths))
	for _, p := range paths {
		t[p] = true
	}
	return t
}

// Has implements Taxonomy.
func (t StaticTaxonomy) Has(path string) bool { return t[path] }
