package query

import (
	"strconv"
	"strings"
)

// Node is a compiled, immutable query tree node.
// The set of implementations is closed: Term, Fuzzy, Prefix, Wildcard,
// Phrase, Range, Boolean and MatchAll.
type Node interface {
	isNode()
	String() string
}

// Occur is a boolean clause requirement.
type Occur int

// Clause requirements.
const (
	Must Occur = iota
	Should
	MustNot
)

func (o Occur) String() string {
	switch o {
	case Must:
		return "MUST"
	case MustNot:
		return "MUST_NOT"
	default:
		return "SHOULD"
	}
}

// OccurOf maps required/prohibited flags to a clause requirement.
func OccurOf(required, prohibited bool) (Occur, bool) {
	switch {
	case required && prohibited:
		return 0, false
	case required:
		return Must, true
	case prohibited:
		return MustNot, true
	default:
		return Should, true
	}
}

// Term matches an exact indexed term.
type Term struct {
	Field string
	Text  string
}

// Fuzzy matches terms within an edit similarity of Text.
type Fuzzy struct {
	Field      string
	Text       string
	Similarity float64
}

// Prefix matches terms starting with Text.
type Prefix struct {
	Field string
	Text  string
}

// Wildcard matches terms against a pattern with * and ? markers.
type Wildcard struct {
	Field   string
	Pattern string
}

// Phrase matches terms in sequence. A phrase with no terms matches nothing.
type Phrase struct {
	Field string
	Terms []string
}

// RangeKind selects how range bounds compare.
type RangeKind int

// Range kinds.
const (
	RangeText RangeKind = iota
	RangeNumeric
	RangeDate
)

// NumericType is the declared type of a numeric field.
type NumericType string

// Numeric field types.
const (
	NumericInt    NumericType = "int"
	NumericLong   NumericType = "long"
	NumericFloat  NumericType = "float"
	NumericDouble NumericType = "double"
)

// IsValid reports whether t is a known numeric type.
func (t NumericType) IsValid() bool {
	switch t {
	case NumericInt, NumericLong, NumericFloat, NumericDouble:
		return true
	}
	return false
}

// Range matches values between two optional bounds.
// Text and date ranges use Lower/Upper; numeric ranges use LowerNum/UpperNum.
type Range struct {
	Field        string
	Kind         RangeKind
	NumType      NumericType
	Lower        *string
	Upper        *string
	LowerNum     *float64
	UpperNum     *float64
	IncludeLower bool
	IncludeUpper bool
}

// Clause is one child of a Boolean node.
type Clause struct {
	Occur Occur
	Node  Node
}

// Boolean combines clauses. It never holds nil children.
type Boolean struct {
	Clauses []Clause
}

// MatchAll matches every document.
type MatchAll struct{}

func (Term) isNode()     {}
func (Fuzzy) isNode()    {}
func (Prefix) isNode()   {}
func (Wildcard) isNode() {}
func (Phrase) isNode()   {}
func (Range) isNode()    {}
func (Boolean) isNode()  {}
func (MatchAll) isNode() {}

func (n Term) String() string { return n.Field + ":" + n.Text }

func (n Fuzzy) String() string {
	return n.Field + ":" + n.Text + "~" + strconv.FormatFloat(n.Similarity, 'f', -1, 64)
}

func (n Prefix) String() string { return n.Field + ":" + n.Text + "*" }

func (n Wildcard) String() string { return n.Field + ":" + n.Pattern }

func (n Phrase) String() string {
	return n.Field + `:"` + strings.Join(n.Terms, " ") + `"`
}

func (n Range) String() string {
	var b strings.Builder
	b.WriteString(n.Field)
	b.WriteByte(':')
	if n.IncludeLower {
		b.WriteByte('[')
	} else {
		b.WriteByte('{')
	}
	b.WriteString(n.bound(n.Lower, n.LowerNum))
	b.WriteString(" TO ")
	b.WriteString(n.bound(n.Upper, n.UpperNum))
	if n.IncludeUpper {
		b.WriteByte(']')
	} else {
		b.WriteByte('}')
	}
	return b.String()
}

func (n Range) bound(s *string, f *float64) string {
	if n.Kind == RangeNumeric {
		if f == nil {
			return "*"
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	if s == nil {
		return "*"
	}
	return *s
}

func (n Boolean) String() string {
	parts := make([]string, 0, len(n.Clauses))
	for _, c := range n.Clauses {
		s := c.Node.String()
		if _, nested := c.Node.(Boolean); nested {
			s = "(" + s + ")"
		}
		switch c.Occur {
		case Must:
			s = "+" + s
		case MustNot:
			s = "-" + s
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func (MatchAll) String() string { return "*:*" }

// Walk visits n and its descendants depth-first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	if b, ok := n.(Boolean); ok {
		for _, c := range b.Clauses {
			Walk(c.Node, fn)
		}
	}
}

// Fields returns the distinct field names a tree references, in visit order.
func Fields(n Node) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	Walk(n, func(n Node) {
		switch v := n.(type) {
		case Term:
			add(v.Field)
		case Fuzzy:
			add(v.Field)
		case Prefix:
			add(v.Field)
		case Wildcard:
			add(v.Field)
		case Phrase:
			add(v.Field)
		case Range:
			add(v.Field)
		}
	})
	return out
}
