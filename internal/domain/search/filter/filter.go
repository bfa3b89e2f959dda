package filter

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/kailas-cloud/mdsearch/internal/domain/geo"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// DefaultCeiling is the maximum number of documents the duplicate filter considers.
const DefaultCeiling = 1_000_000

// Filter narrows ranked candidates at execution time. Apply keeps the
// relative order of the candidates it retains.
type Filter interface {
	// Key identifies the filter for caching.
	Key() string
	// Fields lists the stored fields Apply reads.
	Fields() []string
	// Apply returns the retained candidates. version is the snapshot version
	// the candidates come from.
	Apply(version int64, docs []result.Candidate) []result.Candidate
}

// Duplicate keeps the best ranked document for each value of Field.
type Duplicate struct {
	Field   string
	Ceiling int
}

// NewDuplicate creates a duplicate-removal filter.
func NewDuplicate(field string, ceiling int) Duplicate {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return Duplicate{Field: field, Ceiling: ceiling}
}

// Key implements Filter.
func (d Duplicate) Key() string { return fmt.Sprintf("dup(%s,%d)", d.Field, d.Ceiling) }

// Fields implements Filter.
func (d Duplicate) Fields() []string { return []string{d.Field} }

// Apply implements Filter. Documents without a key value are never duplicates.
func (d Duplicate) Apply(_ int64, docs []result.Candidate) []result.Candidate {
	if len(docs) > d.Ceiling {
		docs = docs[:d.Ceiling]
	}
	seen := make(map[string]struct{}, len(docs))
	out := make([]result.Candidate, 0, len(docs))
	for _, doc := range docs {
		key := doc.Fields.First(d.Field)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, doc)
	}
	return out
}

// Spatial keeps documents whose stored geometry satisfies Relation against
// any of the query geometries.
type Spatial struct {
	Field      string
	Relation   geo.Relation
	Geometries []geom.T
	extents    []geo.Extent
	key        string
}

// NewSpatial creates a spatial predicate. Empty geometries are ignored.
func NewSpatial(field string, rel geo.Relation, geoms []geom.T) *Spatial {
	s := &Spatial{Field: field, Relation: rel, Geometries: geoms}
	parts := make([]string, 0, len(geoms))
	for _, g := range geoms {
		if e, ok := geo.ExtentOf(g); ok {
			s.extents = append(s.extents, e)
		}
		parts = append(parts, geo.WKT(g))
	}
	s.key = fmt.Sprintf("spatial(%s,%s,%s)", field, rel, strings.Join(parts, ";"))
	return s
}

// Key implements Filter.
func (s *Spatial) Key() string { return s.key }

// Fields implements Filter.
func (s *Spatial) Fields() []string { return []string{s.Field} }

// Apply implements Filter. Documents without a parseable geometry never match.
func (s *Spatial) Apply(_ int64, docs []result.Candidate) []result.Candidate {
	out := make([]result.Candidate, 0, len(docs))
	for _, doc := range docs {
		if s.matches(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *Spatial) matches(doc result.Candidate) bool {
	for _, text := range doc.Fields.Values(s.Field) {
		g, err := geo.ParseWKT(text)
		if err != nil {
			continue
		}
		ext, ok := geo.ExtentOf(g)
		if !ok {
			continue
		}
		for _, q := range s.extents {
			if geo.Matches(s.Relation, ext, q) {
				return true
			}
		}
	}
	return false
}

// And applies every filter in sequence.
type And []Filter

// Key implements Filter.
func (a And) Key() string {
	keys := make([]string, len(a))
	for i, f := range a {
		keys[i] = f.Key()
	}
	return "and(" + strings.Join(keys, ",") + ")"
}

// Fields implements Filter.
func (a And) Fields() []string {
	var out []string
	for _, f := range a {
		out = append(out, f.Fields()...)
	}
	return out
}

// Apply implements Filter.
func (a And) Apply(version int64, docs []result.Candidate) []result.Candidate {
	for _, f := range a {
		docs = f.Apply(version, docs)
	}
	return docs
}
