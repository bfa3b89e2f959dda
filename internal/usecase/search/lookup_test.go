package search

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// --- Lookup tests ---

func TestLookup_FirstMatch(t *testing.T) {
	svc, mgr, searcher := newTestService(t, 3)

	got, err := svc.Lookup(context.Background(), LookupInput{Value: "uuid-2", Language: "fre", Fields: []string{"_id"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].First("_id") != "1" {
		t.Errorf("expected the best ranked match only, got %v", got)
	}

	p := searcher.params[0]
	if term, ok := p.Query.Root.(query.Term); !ok || term.Field != "_uuid" || term.Text != "uuid-2" {
		t.Errorf("unexpected lookup query %v", p.Query.Root)
	}
	if p.Limit != 1 || !strings.HasPrefix(p.Sort.String(), "<lang:fre>") {
		t.Errorf("unexpected limit %d or sort %q", p.Limit, p.Sort)
	}
	if mgr.languages[0] != "fre" || mgr.released != 1 {
		t.Errorf("unexpected snapshot use: languages=%v released=%d", mgr.languages, mgr.released)
	}
}

func TestLookup_All(t *testing.T) {
	svc, _, _ := newTestService(t, 3)

	got, err := svc.Lookup(context.Background(), LookupInput{Field: "_id", Value: "1", All: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected every match, got %d", len(got))
	}
}

func TestLookup_NotFound(t *testing.T) {
	svc, mgr, _ := newTestService(t, 0)

	_, err := svc.Lookup(context.Background(), LookupInput{Value: "missing"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if mgr.released != 1 {
		t.Errorf("expected 1 release, got %d", mgr.released)
	}
}

// --- Suggest tests ---

func TestSuggest(t *testing.T) {
	svc, _, searcher := newTestService(t, 3)
	searcher.docs["md:1"]["keyword"] = []string{"river", "lake"}
	searcher.docs["md:2"]["keyword"] = []string{"lake"}
	searcher.docs["md:3"]["keyword"] = []string{"Lakeside", "sea"}

	tests := []struct {
		name      string
		value     string
		maxTerms  int
		threshold int
		want      []TermFrequency
	}{
		{"wildcards stripped", "LAK*", 0, 0, []TermFrequency{{"lake", 2}, {"Lakeside", 1}}},
		{"threshold", "lak", 0, 2, []TermFrequency{{"lake", 2}}},
		{"everything", "", 0, 0, []TermFrequency{{"lake", 2}, {"Lakeside", 1}, {"river", 1}, {"sea", 1}}},
		{"max terms", "", 2, 0, []TermFrequency{{"lake", 2}, {"river", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Suggest(context.Background(), SuggestInput{
				Input:     Input{Request: paramsOf()},
				Field:     "keyword",
				Value:     tt.value,
				MaxTerms:  tt.maxTerms,
				Threshold: tt.threshold,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Suggest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllUUIDs(t *testing.T) {
	svc, _, searcher := newTestService(t, 4)

	got, err := svc.AllUUIDs(context.Background(), Input{Request: paramsOf()}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"uuid-1", "uuid-2"}) {
		t.Errorf("unexpected uuids %v", got)
	}
	if searcher.params[0].Facets != nil {
		t.Error("bulk reads must not count facets")
	}
}

func TestAllInfo(t *testing.T) {
	svc, _, searcher := newTestService(t, 1)
	searcher.docs["md:1"]["_title"] = []string{"Lakes"}
	searcher.docs["md:1"]["_owner"] = []string{"42"}

	got, err := svc.AllInfo(context.Background(), Input{Request: paramsOf()}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UUID != "uuid-1" || got[0].Title != "Lakes" || got[0].Owner != "42" {
		t.Errorf("unexpected info %+v", got)
	}
}

// --- FilterCache tests ---

type countingFilter struct {
	calls int
	keep  map[string]bool
}

func (f *countingFilter) Key() string { return "counting" }

func (f *countingFilter) Fields() []string { return []string{"_id"} }

func (f *countingFilter) Apply(_ int64, docs []result.Candidate) []result.Candidate {
	f.calls++
	var out []result.Candidate
	for _, d := range docs {
		if f.keep[d.Ref] {
			out = append(out, d)
		}
	}
	return out
}

func TestFilterCache_ReusesResultPerVersion(t *testing.T) {
	cache, err := NewFilterCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner := &countingFilter{keep: map[string]bool{"b": true, "c": true}}
	f := cache.Wrap(inner, "eng|q|s")
	docs := []result.Candidate{{Ref: "a"}, {Ref: "b"}, {Ref: "c"}}

	refsOf := func(ds []result.Candidate) []string {
		var out []string
		for _, d := range ds {
			out = append(out, d.Ref)
		}
		return out
	}

	first := f.Apply(1, docs)
	second := f.Apply(1, docs)
	if inner.calls != 1 {
		t.Errorf("expected 1 computation, got %d", inner.calls)
	}
	if !slices.Equal(refsOf(first), []string{"b", "c"}) || !slices.Equal(refsOf(second), refsOf(first)) {
		t.Errorf("cached result differs: %v vs %v", refsOf(first), refsOf(second))
	}

	f.Apply(2, docs)
	if inner.calls != 2 {
		t.Errorf("new version must recompute, got %d calls", inner.calls)
	}

	cache.Wrap(inner, "fre|q|s").Apply(2, docs)
	if inner.calls != 3 {
		t.Errorf("new scope must recompute, got %d calls", inner.calls)
	}
	if cache.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", cache.Len())
	}
	if f.Key() != "counting" {
		t.Errorf("wrapped filter keeps its key, got %q", f.Key())
	}
}

func TestFilterCache_NilIsPassThrough(t *testing.T) {
	var cache *FilterCache
	inner := &countingFilter{}
	if got := cache.Wrap(inner, "x"); got != inner {
		t.Errorf("nil cache should return the filter unchanged, got %T", got)
	}
}
