package bleve

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
)

// translator maps compiled query nodes to bleve queries.
type translator struct {
	def *db.IndexDefinition
}

func (t translator) translate(n query.Node) (bq.Query, error) {
	switch n := n.(type) {
	case query.Term:
		return t.term(n.Field, n.Text)
	case query.Fuzzy:
		if t.def.TypeOf(n.Field) != db.IndexFieldText {
			return t.term(n.Field, n.Text)
		}
		q := bleve.NewFuzzyQuery(n.Text)
		q.SetField(fieldName(n.Field))
		q.SetFuzziness(fuzziness(n.Similarity))
		return q, nil
	case query.Prefix:
		if err := t.requireKeyed(n.Field, n); err != nil {
			return nil, err
		}
		q := bleve.NewPrefixQuery(n.Text)
		q.SetField(fieldName(n.Field))
		return q, nil
	case query.Wildcard:
		if err := t.requireKeyed(n.Field, n); err != nil {
			return nil, err
		}
		q := bleve.NewWildcardQuery(n.Pattern)
		q.SetField(fieldName(n.Field))
		return q, nil
	case query.Phrase:
		if len(n.Terms) == 0 {
			return bleve.NewMatchNoneQuery(), nil
		}
		return bleve.NewPhraseQuery(n.Terms, fieldName(n.Field)), nil
	case query.Range:
		return t.rangeOf(n)
	case query.Boolean:
		return t.boolean(n)
	case query.MatchAll:
		return bleve.NewMatchAllQuery(), nil
	default:
		return nil, &domain.UnsupportedQueryNodeError{Kind: fmt.Sprintf("%T", n)}
	}
}

// fuzziness maps a similarity in [0,1) to an edit distance bleve accepts.
func fuzziness(similarity float64) int {
	if similarity < 0.5 {
		return 2
	}
	return 1
}

// requireKeyed rejects term patterns on fields without indexed terms.
func (t translator) requireKeyed(field string, n query.Node) error {
	switch t.def.TypeOf(field) {
	case db.IndexFieldNumeric, db.IndexFieldDate, db.IndexFieldStored:
		return fmt.Errorf("%w: %s on %s field", domain.ErrUnsupportedByEngine, n, t.def.TypeOf(field))
	}
	return nil
}

func (t translator) term(field, text string) (bq.Query, error) {
	switch t.def.TypeOf(field) {
	case db.IndexFieldNumeric:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s expects a number, got %q", domain.ErrInvalidQuery, field, text)
		}
		return numericRange(field, &v, &v, true, true), nil
	case db.IndexFieldDate:
		d, err := query.ParseDate(text)
		if err != nil {
			return nil, err
		}
		return dateRange(field, d, d, true, true), nil
	case db.IndexFieldStored:
		return nil, fmt.Errorf("%w: field %s is not indexed", domain.ErrUnsupportedByEngine, field)
	}
	q := bleve.NewTermQuery(text)
	q.SetField(fieldName(field))
	return q, nil
}

func (t translator) rangeOf(n query.Range) (bq.Query, error) {
	switch n.Kind {
	case query.RangeNumeric:
		if n.LowerNum == nil && n.UpperNum == nil {
			return bleve.NewMatchAllQuery(), nil
		}
		return numericRange(n.Field, n.LowerNum, n.UpperNum, n.IncludeLower, n.IncludeUpper), nil
	case query.RangeDate:
		lower, err := dateBound(n.Lower)
		if err != nil {
			return nil, err
		}
		upper, err := dateBound(n.Upper)
		if err != nil {
			return nil, err
		}
		// bleve stores datetimes as int64 nanoseconds.
		if (n.Lower != nil && lower.After(bq.MaxRFC3339CompatibleTime)) ||
			(n.Upper != nil && upper.Before(bq.MinRFC3339CompatibleTime)) {
			return bleve.NewMatchNoneQuery(), nil
		}
		if lower.Before(bq.MinRFC3339CompatibleTime) {
			lower = time.Time{}
		}
		if upper.After(bq.MaxRFC3339CompatibleTime) {
			upper = time.Time{}
		}
		if lower.IsZero() && upper.IsZero() {
			return bleve.NewMatchAllQuery(), nil
		}
		return dateRange(n.Field, lower, upper, n.IncludeLower, n.IncludeUpper), nil
	default:
		var lower, upper string
		if n.Lower != nil {
			lower = *n.Lower
		}
		if n.Upper != nil {
			upper = *n.Upper
		}
		if lower == "" && upper == "" {
			return bleve.NewMatchAllQuery(), nil
		}
		q := bleve.NewTermRangeInclusiveQuery(lower, upper, &n.IncludeLower, &n.IncludeUpper)
		q.SetField(fieldName(n.Field))
		return q, nil
	}
}

func numericRange(field string, lower, upper *float64, incLower, incUpper bool) bq.Query {
	q := bleve.NewNumericRangeInclusiveQuery(lower, upper, &incLower, &incUpper)
	q.SetField(fieldName(field))
	return q
}

// dateBound parses an optional range bound. A nil bound is the zero time.
func dateBound(s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, nil
	}
	return query.ParseDate(*s)
}

// dateRange builds a date range; a zero bound is open.
func dateRange(field string, lower, upper time.Time, incLower, incUpper bool) bq.Query {
	q := bleve.NewDateRangeInclusiveQuery(lower, upper, &incLower, &incUpper)
	q.SetField(fieldName(field))
	return q
}

func (t translator) boolean(n query.Boolean) (bq.Query, error) {
	if len(n.Clauses) == 0 {
		return bleve.NewMatchNoneQuery(), nil
	}
	b := bq.NewBooleanQuery(nil, nil, nil)
	var musts, shoulds, mustNots int
	for _, c := range n.Clauses {
		q, err := t.translate(c.Node)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case query.Must:
			b.AddMust(q)
			musts++
		case query.MustNot:
			b.AddMustNot(q)
			mustNots++
		default:
			b.AddShould(q)
			shoulds++
		}
	}
	switch {
	case musts == 0 && shoulds > 0:
		b.SetMinShould(1)
	case musts == 0 && mustNots > 0:
		b.AddMust(bleve.NewMatchAllQuery())
	}
	return b, nil
}
