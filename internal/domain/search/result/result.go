package result

import "slices"

// Fields holds stored field values of one document. Fields may repeat.
type Fields map[string][]string

// First returns the first value of name or "".
func (f Fields) First(name string) string {
	if v := f[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns all values of name.
func (f Fields) Values(name string) []string { return f[name] }

// Names returns field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Candidate is a matching document as returned by an engine, before
// filtering and ordering.
type Candidate struct {
	Ref    string
	Score  float64
	Fields Fields
}

// Hit is a ranked document reference.
type Hit struct {
	Ref   string
	Score float64
}

// ValueCount is one facet value with its document count.
type ValueCount struct {
	Value string
	Count float64
}

// FacetCounts holds the counts for one category path, count descending.
// Err is set when the category is missing from the taxonomy.
type FacetCounts struct {
	Path   string
	Values []ValueCount
	Err    error
}

// Ranked is the outcome of one execution pass.
type Ranked struct {
	Total  int
	Hits   []Hit
	Facets []FacetCounts
}
