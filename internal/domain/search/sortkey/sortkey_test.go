package sortkey

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

func cand(ref string, score float64, kv ...string) result.Candidate {
	f := result.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = append(f[kv[i]], kv[i+1])
	}
	return result.Candidate{Ref: ref, Score: score, Fields: f}
}

func sorted(spec Spec, cs ...result.Candidate) []string {
	slices.SortStableFunc(cs, spec.Comparator())
	refs := make([]string, len(cs))
	for i, c := range cs {
		refs[i] = c.Ref
	}
	return refs
}

func TestNew_AlwaysEndsWithRelevance(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want int
	}{
		{"empty", nil, 1},
		{"string key", []Key{{Field: "_title", Kind: String}}, 2},
		{"already relevance", []Key{{Field: "_title", Kind: String}, {Kind: Relevance}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := New(tt.keys...).Keys()
			if len(keys) != tt.want {
				t.Fatalf("expected %d keys, got %d", tt.want, len(keys))
			}
			if keys[len(keys)-1].Kind != Relevance {
				t.Error("last key must be relevance")
			}
		})
	}
}

func TestZeroSpec_HasRelevanceKey(t *testing.T) {
	var s Spec
	if len(s.Keys()) != 1 {
		t.Fatalf("zero spec must expose one key, got %d", len(s.Keys()))
	}
}

func TestComparator_RelevanceTiebreak(t *testing.T) {
	spec := New(Key{Field: "_title", Kind: String})
	got := sorted(spec,
		cand("low", 1, "_title", "Same"),
		cand("high", 3, "_title", "same"),
		cand("first", 0.5, "_title", "abc"),
	)
	if !slices.Equal(got, []string{"first", "high", "low"}) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestComparator_Reverse(t *testing.T) {
	spec := New(Key{Field: "_popularity", Kind: Integer, Reverse: true})
	got := sorted(spec,
		cand("a", 1, "_popularity", "2"),
		cand("b", 1, "_popularity", "10"),
		cand("c", 1),
	)
	if !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestComparator_LangOnTop(t *testing.T) {
	spec := New(Key{Kind: LangOnTop, Locale: "fre"})
	got := sorted(spec,
		cand("en", 5, "_locale", "eng"),
		cand("fr", 1, "_locale", "fre"),
		cand("de", 3, "_locale", "ger"),
	)
	if !slices.Equal(got, []string{"fr", "en", "de"}) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestComparator_LocaleString(t *testing.T) {
	spec := New(Key{Field: "_title", Kind: LocaleString, Locale: "fre"})
	got := sorted(spec,
		cand("z", 1, "_title", "zèbre"),
		cand("e", 1, "_title", "Été"),
		cand("a", 1, "_title", "arbre"),
	)
	if !slices.Equal(got, []string{"a", "e", "z"}) {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestSpec_FieldsAndString(t *testing.T) {
	spec := New(
		Key{Kind: LangOnTop, Locale: "eng"},
		Key{Field: "_title", Kind: String, Reverse: true},
	)
	if got := spec.Fields(); !slices.Equal(got, []string{LocaleField, "_title"}) {
		t.Errorf("unexpected fields: %v", got)
	}
	if got := spec.String(); got != "<lang:eng>,_title<string>!,<score>" {
		t.Errorf("unexpected string: %q", got)
	}
}
