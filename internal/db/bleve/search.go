package bleve

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/db/collect"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// DefaultWindow is the number of candidates fetched when ranking happens
// outside the engine.
const DefaultWindow = 10000

// Compile-time check: Searcher implements snapshot.Searcher.
var _ snapshot.Searcher = (*Searcher)(nil)

// Searcher runs queries against one pinned index generation.
type Searcher struct {
	index   bleve.Index
	def     *db.IndexDefinition
	window  int
	version int64
}

// NewSearcher creates a searcher over index.
func NewSearcher(index bleve.Index, def *db.IndexDefinition, window int, version int64) *Searcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Searcher{index: index, def: def, window: window, version: version}
}

// Search implements snapshot.Searcher.
func (s *Searcher) Search(ctx context.Context, p snapshot.Params) (*result.Ranked, error) {
	if p.Query == nil || p.Query.Root == nil {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	}
	q, err := translator{def: s.def}.translate(p.Query.Root)
	if err != nil {
		return nil, err
	}

	size := s.window
	if p.Filter == nil && len(p.Facets) == 0 && p.Query.Boost == nil && p.Sort.RelevanceOnly() {
		size = max(p.Limit, 0)
	}

	req := bleve.NewSearchRequestOptions(q, size, 0, false)
	req.Fields = engineFields(collect.Fields(p))

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpBleveSearch, Err: err}
	}

	cands := make([]result.Candidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		cands = append(cands, result.Candidate{Ref: hit.ID, Score: hit.Score, Fields: toFields(hit)})
	}

	return collect.Collect(cands, p, collect.Input{
		Version:     s.version,
		EngineTotal: int(res.Total),
		Taxonomy:    s.def,
	}), nil
}

// Fetch implements snapshot.Searcher. ref is the bleve document id.
func (s *Searcher) Fetch(ctx context.Context, ref string, fields []string) (result.Fields, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery([]string{ref}), 1, 0, false)
	if len(fields) == 0 {
		req.Fields = []string{"*"}
	} else {
		req.Fields = engineFields(fields)
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpBleveSearch, Err: err}
	}
	if len(res.Hits) == 0 {
		if len(fields) == 0 {
			return nil, fmt.Errorf("document %s: %w", ref, domain.ErrNotFound)
		}
		return result.Fields{}, nil
	}

	out := toFields(res.Hits[0])
	if len(fields) > 0 {
		for name := range out {
			if !slices.Contains(fields, name) {
				delete(out, name)
			}
		}
	}
	return out, nil
}

func engineFields(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fieldName(n)
	}
	return out
}

// toFields flattens stored hit fields. Arrays become repeated values.
func toFields(hit *search.DocumentMatch) result.Fields {
	out := make(result.Fields, len(hit.Fields))
	for name, v := range hit.Fields {
		name = catalogName(name)
		switch x := v.(type) {
		case []any:
			for _, e := range x {
				out[name] = append(out[name], fieldString(e))
			}
		default:
			out[name] = []string{fieldString(x)}
		}
	}
	return out
}

func fieldString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
