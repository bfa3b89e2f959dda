// Package collect ranks engine candidates: boost rescoring, composite
// ordering, filtering, facet counting and the top-hit window.
package collect

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// Input carries snapshot state the collector needs besides the candidates.
type Input struct {
	Version int64
	// EngineTotal is the match count reported by the engine. It is used as
	// the total only when no filter narrows the candidates.
	EngineTotal int
	Taxonomy    snapshot.Taxonomy
}

// Fields lists the stored fields candidates must carry for p.
func Fields(p snapshot.Params) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(fs ...string) {
		for _, f := range fs {
			if f != "" && !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	add(p.Sort.Fields()...)
	if p.Filter != nil {
		add(p.Filter.Fields()...)
	}
	if p.Query != nil && p.Query.Boost != nil {
		add(p.Query.Boost.Fields...)
	}
	for _, f := range p.Facets {
		add(f.Path)
	}
	return out
}

// Collect ranks cands according to p. cands is reordered in place.
func Collect(cands []result.Candidate, p snapshot.Params, in Input) *result.Ranked {
	if p.Query != nil && p.Query.Boost != nil {
		for i := range cands {
			cands[i].Score = p.Query.Rescore(cands[i].Score, cands[i].Fields)
		}
	}

	slices.SortStableFunc(cands, p.Sort.Comparator())

	total := max(in.EngineTotal, len(cands))
	if p.Filter != nil {
		cands = p.Filter.Apply(in.Version, cands)
		total = len(cands)
	}

	out := &result.Ranked{Total: total}
	if len(p.Facets) > 0 {
		out.Facets = make([]result.FacetCounts, 0, len(p.Facets))
		for _, f := range p.Facets {
			out.Facets = append(out.Facets, countFacet(cands, f.Path, f.Max, in.Taxonomy))
		}
	}

	n := min(max(p.Limit, 0), len(cands))
	out.Hits = make([]result.Hit, n)
	for i := range n {
		out.Hits[i] = result.Hit{Ref: cands[i].Ref, Score: cands[i].Score}
	}
	return out
}

func countFacet(cands []result.Candidate, path string, limit int, tax snapshot.Taxonomy) result.FacetCounts {
	fc := result.FacetCounts{Path: path}
	if tax != nil && !tax.Has(path) {
		fc.Err = domain.ErrFacetConfiguration
		return fc
	}

	counts := make(map[string]float64)
	for _, c := range cands {
		seen := make(map[string]bool)
		for _, v := range c.Fields.Values(path) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			counts[v]++
		}
	}

	fc.Values = make([]result.ValueCount, 0, len(counts))
	for v, n := range counts {
		fc.Values = append(fc.Values, result.ValueCount{Value: v, Count: n})
	}
	SortCounts(fc.Values)
	if limit > 0 && len(fc.Values) > limit {
		fc.Values = fc.Values[:limit]
	}
	return fc
}

// SortCounts orders values by count descending, ties by value ascending.
func SortCounts(vs []result.ValueCount) {
	slices.SortFunc(vs, func(a, b result.ValueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
}
