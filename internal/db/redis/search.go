package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

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

// Searcher runs queries against one FT index.
type Searcher struct {
	store   *Store
	index   string
	def     *db.IndexDefinition
	window  int
	version int64
}

// NewSearcher creates a searcher over index. def describes its fields.
func NewSearcher(store *Store, index string, def *db.IndexDefinition, window int, version int64) *Searcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Searcher{store: store, index: index, def: def, window: window, version: version}
}

// Search implements snapshot.Searcher. Relevance-only queries without
// filter or facets are ranked by the engine; everything else fetches a
// candidate window and ranks it with the collector.
func (s *Searcher) Search(ctx context.Context, p snapshot.Params) (*result.Ranked, error) {
	if p.Query == nil || p.Query.Root == nil {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	}
	q, err := renderer{def: s.def}.render(p.Query.Root)
	if err != nil {
		return nil, err
	}

	fields := collect.Fields(p)
	limit := s.window
	if p.Filter == nil && len(p.Facets) == 0 && p.Query.Boost == nil && p.Sort.RelevanceOnly() {
		limit = max(p.Limit, 0)
	}

	args := []string{s.index, q, "WITHSCORES"}
	if len(fields) == 0 {
		args = append(args, "NOCONTENT")
	} else {
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2")

	cmd := s.store.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.store.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index") {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%s: %w", s.index, db.ErrIndexNotFound)}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	total, cands, err := parseSearchResult(raw, len(fields) > 0, s.def)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return collect.Collect(cands, p, collect.Input{
		Version:     s.version,
		EngineTotal: total,
		Taxonomy:    s.def,
	}), nil
}

// Fetch implements snapshot.Searcher. ref is the document hash key.
func (s *Searcher) Fetch(ctx context.Context, ref string, fields []string) (result.Fields, error) {
	var (
		m   map[string]string
		err error
	)
	if len(fields) == 0 {
		m, err = s.store.HGetAll(ctx, ref)
	} else {
		m, err = s.store.HMGet(ctx, ref, fields...)
	}
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 && len(m) == 0 {
		return nil, fmt.Errorf("document %s: %w", ref, domain.ErrNotFound)
	}
	return toFields(m, s.def), nil
}

// --- Result parsing ---

// parseSearchResult reads a WITHSCORES reply:
// [total, key1, score1, fields1, ...] or, without content, [total, key1, score1, ...].
func parseSearchResult(
	raw []rueidis.RedisMessage, withContent bool, def *db.IndexDefinition,
) (int, []result.Candidate, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}

	stride := 2
	if withContent {
		stride = 3
	}

	cands := make([]result.Candidate, 0, (len(raw)-1)/stride)
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		score, err := parseScore(raw[i+1])
		if err != nil {
			continue
		}

		c := result.Candidate{Ref: key, Score: score, Fields: result.Fields{}}
		if withContent {
			pairs, err := raw[i+2].ToArray()
			if err != nil {
				continue
			}
			c.Fields = toFields(parseFieldPairs(pairs), def)
		}
		cands = append(cands, c)
	}

	return int(total), cands, nil
}

func parseScore(m rueidis.RedisMessage) (float64, error) {
	str, err := m.ToString()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(str, 64)
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// toFields splits declared multi-valued tag fields on their separator.
func toFields(m map[string]string, def *db.IndexDefinition) result.Fields {
	out := make(result.Fields, len(m))
	for name, v := range m {
		if f, ok := def.Field(name); !ok || f.Type != db.IndexFieldTag {
			out[name] = []string{v}
			continue
		}
		for _, part := range strings.Split(v, def.Separator(name)) {
			if part = strings.TrimSpace(part); part != "" {
				out[name] = append(out[name], part)
			}
		}
	}
	return out
}
