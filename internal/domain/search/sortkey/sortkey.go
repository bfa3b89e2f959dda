package sortkey

import (
	"cmp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"

	"github.com/kailas-cloud/mdsearch/internal/domain/lang"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// LocaleField holds the document language code.
const LocaleField = "_locale"

// Kind is the comparison used by a sort key.
type Kind int

// Sort key kinds.
const (
	Relevance Kind = iota
	String
	LocaleString
	Integer
	LangOnTop
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case LocaleString:
		return "localeString"
	case Integer:
		return "integer"
	case LangOnTop:
		return "langOnTop"
	default:
		return "relevance"
	}
}

// Key is one level of a composite ordering.
type Key struct {
	Field   string
	Kind    Kind
	Reverse bool
	Locale  string
}

// Spec is an ordered list of keys ending with relevance.
type Spec struct {
	keys []Key
}

// New builds a Spec, appending a relevance key if the last key is not one.
func New(keys ...Key) Spec {
	out := make([]Key, 0, len(keys)+1)
	out = append(out, keys...)
	if len(out) == 0 || out[len(out)-1].Kind != Relevance {
		out = append(out, Key{Kind: Relevance})
	}
	return Spec{keys: out}
}

// Keys returns a copy of the keys.
func (s Spec) Keys() []Key {
	if len(s.keys) == 0 {
		return []Key{{Kind: Relevance}}
	}
	return append([]Key(nil), s.keys...)
}

// Fields lists the stored fields the comparator reads.
func (s Spec) Fields() []string {
	var out []string
	for _, k := range s.Keys() {
		switch k.Kind {
		case LangOnTop:
			out = append(out, LocaleField)
		case String, LocaleString, Integer:
			out = append(out, k.Field)
		}
	}
	return out
}

// String renders the spec for logs.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.keys))
	for _, k := range s.Keys() {
		var p string
		switch k.Kind {
		case Relevance:
			p = "<score>"
		case LangOnTop:
			p = "<lang:" + k.Locale + ">"
		default:
			p = k.Field + "<" + k.Kind.String() + ">"
		}
		if k.Reverse {
			p += "!"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ",")
}

// Comparator returns a three-way comparison over candidates.
// The returned function is not safe for concurrent use.
func (s Spec) Comparator() func(a, b result.Candidate) int {
	keys := s.Keys()
	cmps := make([]func(a, b result.Candidate) int, len(keys))
	for i, k := range keys {
		cmps[i] = keyComparator(k)
	}
	return func(a, b result.Candidate) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

func keyComparator(k Key) func(a, b result.Candidate) int {
	var c func(a, b result.Candidate) int
	switch k.Kind {
	case LangOnTop:
		locale := k.Locale
		return func(a, b result.Candidate) int {
			am := a.Fields.First(LocaleField) == locale
			bm := b.Fields.First(LocaleField) == locale
			switch {
			case am == bm:
				return 0
			case am:
				return -1
			default:
				return 1
			}
		}
	case Relevance:
		c = func(a, b result.Candidate) int { return cmp.Compare(b.Score, a.Score) }
	case Integer:
		c = func(a, b result.Candidate) int {
			return cmp.Compare(intValue(a.Fields.First(k.Field)), intValue(b.Fields.First(k.Field)))
		}
	case LocaleString:
		col := collate.New(lang.Tag(k.Locale), collate.IgnoreCase)
		c = func(a, b result.Candidate) int {
			return col.CompareString(a.Fields.First(k.Field), b.Fields.First(k.Field))
		}
	default:
		fold := cases.Fold()
		c = func(a, b result.Candidate) int {
			return strings.Compare(fold.String(a.Fields.First(k.Field)), fold.String(b.Fields.First(k.Field)))
		}
	}
	if k.Reverse {
		return func(a, b result.Candidate) int { return c(b, a) }
	}
	return c
}

func intValue(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// RelevanceOnly reports whether the spec orders by score alone.
func (s Spec) RelevanceOnly() bool {
	keys := s.Keys()
	return len(keys) == 1 && keys[0].Kind == Relevance && !keys[0].Reverse
}
