package query

// Kind tags a query description node.
type Kind string

// Description node kinds.
const (
	KindTerm      Kind = "term"
	KindFuzzy     Kind = "fuzzy"
	KindPrefix    Kind = "prefix"
	KindWildcard  Kind = "wildcard"
	KindPhrase    Kind = "phrase"
	KindRange     Kind = "range"
	KindDateRange Kind = "dateRange"
	KindBoolean   Kind = "boolean"
	KindMatchAll  Kind = "matchAll"
)

// Description is the declarative, uncompiled query tree a caller submits.
// Text is raw user input: analysis happens at compile time.
type Description struct {
	Kind       Kind                `json:"kind"`
	Field      string              `json:"field,omitempty"`
	Text       string              `json:"text,omitempty"`
	Similarity float64             `json:"similarity,omitempty"`
	Terms      []Description       `json:"terms,omitempty"`
	Lower      *string             `json:"lower,omitempty"`
	Upper      *string             `json:"upper,omitempty"`
	Inclusive  bool                `json:"inclusive,omitempty"`
	Clauses    []ClauseDescription `json:"clauses,omitempty"`
}

// ClauseDescription is one child of a boolean description.
type ClauseDescription struct {
	Required   bool         `json:"required,omitempty"`
	Prohibited bool         `json:"prohibited,omitempty"`
	Query      *Description `json:"query,omitempty"`
}

// TermOf describes a term match.
func TermOf(field, text string) Description {
	return Description{Kind: KindTerm, Field: field, Text: text}
}

// PhraseOf describes a phrase over one field.
func PhraseOf(field string, words ...string) Description {
	terms := make([]Description, len(words))
	for i, w := range words {
		terms[i] = TermOf(field, w)
	}
	return Description{Kind: KindPhrase, Terms: terms}
}

// DateRangeOf describes a date range. Empty bounds are open.
func DateRangeOf(field, lower, upper string) Description {
	d := Description{Kind: KindDateRange, Field: field, Inclusive: true}
	if lower != "" {
		d.Lower = &lower
	}
	if upper != "" {
		d.Upper = &upper
	}
	return d
}

// MatchAllOf describes a query matching every document.
func MatchAllOf() Description {
	return Description{Kind: KindMatchAll}
}

// BooleanOf describes a boolean query from clauses.
func BooleanOf(clauses ...ClauseDescription) Description {
	return Description{Kind: KindBoolean, Clauses: clauses}
}

// MustOf wraps d as a required clause.
func MustOf(d Description) ClauseDescription {
	return ClauseDescription{Required: true, Query: &d}
}

// ShouldOf wraps d as an optional clause.
func ShouldOf(d Description) ClauseDescription {
	return ClauseDescription{Query: &d}
}

// MustNotOf wraps d as a prohibited clause.
func MustNotOf(d Description) ClauseDescription {
	return ClauseDescription{Prohibited: true, Query: &d}
}
