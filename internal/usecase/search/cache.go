package search

import (
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
)

// DefaultFilterCacheSize is the entry count used when none is configured.
const DefaultFilterCacheSize = 256

// FilterCache remembers which candidates a filter kept for a snapshot
// version. Entries are keyed by version, filter key and query scope, so a
// new snapshot never reads a previous version's result.
type FilterCache struct {
	entries *lru.Cache[string, []string]
	group   singleflight.Group
}

// NewFilterCache creates a cache holding up to size filter results.
func NewFilterCache(size int) (*FilterCache, error) {
	if size <= 0 {
		size = DefaultFilterCacheSize
	}
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("create filter cache: %w", err)
	}
	return &FilterCache{entries: entries}, nil
}

// Len returns the number of cached results.
func (c *FilterCache) Len() int { return c.entries.Len() }

// Wrap returns f backed by the cache. scope identifies the candidate set
// the filter sees.
func (c *FilterCache) Wrap(f filter.Filter, scope string) filter.Filter {
	if c == nil || f == nil {
		return f
	}
	return &cachedFilter{inner: f, scope: scope, cache: c}
}

type cachedFilter struct {
	inner filter.Filter
	scope string
	cache *FilterCache
}

func (f *cachedFilter) Key() string { return f.inner.Key() }

func (f *cachedFilter) Fields() []string { return f.inner.Fields() }

func (f *cachedFilter) Apply(version int64, docs []result.Candidate) []result.Candidate {
	key := strconv.FormatInt(version, 10) + "|" + f.inner.Key() + "|" + f.scope
	if refs, ok := f.cache.entries.Get(key); ok {
		metrics.FilterCacheTotal.WithLabelValues("hit").Inc()
		return retain(docs, refs)
	}
	metrics.FilterCacheTotal.WithLabelValues("miss").Inc()

	v, _, _ := f.cache.group.Do(key, func() (any, error) {
		kept := f.inner.Apply(version, docs)
		refs := make([]string, len(kept))
		for i, d := range kept {
			refs[i] = d.Ref
		}
		f.cache.entries.Add(key, refs)
		return refs, nil
	})
	return retain(docs, v.([]string))
}

// retain returns the docs whose ref is in refs, in refs order.
func retain(docs []result.Candidate, refs []string) []result.Candidate {
	byRef := make(map[string]result.Candidate, len(docs))
	for _, d := range docs {
		if _, seen := byRef[d.Ref]; !seen {
			byRef[d.Ref] = d
		}
	}
	out := make([]result.Candidate, 0, len(refs))
	for _, ref := range refs {
		if d, ok := byRef[ref]; ok {
			out = append(out, d)
		}
	}
	return out
}
