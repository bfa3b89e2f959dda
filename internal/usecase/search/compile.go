package search

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/analysis"
	"github.com/kailas-cloud/mdsearch/internal/config"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
)

// defaultSimilarity applies to fuzzy descriptions without a similarity.
const defaultSimilarity = 0.5

// compiler turns query descriptions into executable nodes. It holds no
// mutable state.
type compiler struct {
	analyzer   *analysis.PerField
	numeric    map[string]query.NumericType
	maxClauses int
}

// compile returns nil when d analyzes to nothing.
func (c compiler) compile(d *query.Description) (query.Node, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Kind {
	case query.KindTerm, query.KindFuzzy, query.KindWildcard:
		return c.termLike(d)
	case query.KindPrefix:
		return c.prefix(d)
	case query.KindPhrase:
		return c.phrase(d)
	case query.KindRange:
		return c.rangeOf(d)
	case query.KindDateRange:
		return c.dateRange(d)
	case query.KindBoolean:
		return c.boolean(d)
	case query.KindMatchAll:
		return query.MatchAll{}, nil
	default:
		return nil, &domain.UnsupportedQueryNodeError{Kind: string(d.Kind)}
	}
}

func (c compiler) termLike(d *query.Description) (query.Node, error) {
	if d.Kind == query.KindWildcard || analysis.HasWildcard(d.Text) {
		pattern := c.analyzer.AnalyzeWildcard(d.Field, d.Text)
		if pattern == "" {
			return nil, nil
		}
		return query.Wildcard{Field: d.Field, Pattern: pattern}, nil
	}

	a := c.analyzer.Analyze(d.Field, d.Text)
	tokens := a.Tokens
	if a.Quoted && !c.analyzer.Tokenized(d.Field) && len(tokens) == 1 {
		tokens = nonBlank([]string{strings.Trim(tokens[0], `"`)})
	}
	similarity := d.Similarity
	if d.Kind == query.KindFuzzy && similarity == 0 {
		similarity = defaultSimilarity
	}
	fuzzy := similarity > 0 && similarity < 1

	single := func(tok string) query.Node {
		if fuzzy {
			return query.Fuzzy{Field: d.Field, Text: tok, Similarity: similarity}
		}
		return query.Term{Field: d.Field, Text: tok}
	}

	switch len(tokens) {
	case 0:
		return nil, nil
	case 1:
		return single(tokens[0]), nil
	}
	if a.Quoted {
		return query.Phrase{Field: d.Field, Terms: tokens}, nil
	}
	if err := c.checkClauses(len(tokens)); err != nil {
		return nil, err
	}
	clauses := make([]query.Clause, len(tokens))
	for i, tok := range tokens {
		clauses[i] = query.Clause{Occur: query.Must, Node: single(tok)}
	}
	return query.Boolean{Clauses: clauses}, nil
}

func (c compiler) prefix(d *query.Description) (query.Node, error) {
	a := c.analyzer.Analyze(d.Field, d.Text)
	if a.Empty() {
		return nil, nil
	}
	return query.Prefix{Field: d.Field, Text: a.Text()}, nil
}

// phrase analyzes each child term on its own. A phrase left with no terms
// stays in the tree and matches nothing.
func (c compiler) phrase(d *query.Description) (query.Node, error) {
	field := d.Field
	var terms []string
	for _, t := range d.Terms {
		if field == "" {
			field = t.Field
		}
		f := t.Field
		if f == "" {
			f = field
		}
		terms = append(terms, c.analyzer.Analyze(f, t.Text).Tokens...)
	}
	return query.Phrase{Field: field, Terms: terms}, nil
}

func (c compiler) rangeOf(d *query.Description) (query.Node, error) {
	if nt, ok := c.numeric[d.Field]; ok {
		lower, err := parseNumber(d.Field, d.Lower, nt)
		if err != nil {
			return nil, err
		}
		upper, err := parseNumber(d.Field, d.Upper, nt)
		if err != nil {
			return nil, err
		}
		return query.Range{
			Field: d.Field, Kind: query.RangeNumeric, NumType: nt,
			LowerNum: lower, UpperNum: upper,
			IncludeLower: d.Inclusive, IncludeUpper: d.Inclusive,
		}, nil
	}

	return query.Range{
		Field: d.Field, Kind: query.RangeText,
		Lower: c.analyzeBound(d.Field, d.Lower), Upper: c.analyzeBound(d.Field, d.Upper),
		IncludeLower: d.Inclusive, IncludeUpper: d.Inclusive,
	}, nil
}

func (c compiler) analyzeBound(field string, bound *string) *string {
	if bound == nil {
		return nil
	}
	a := c.analyzer.Analyze(field, *bound)
	if a.Empty() {
		return nil
	}
	s := a.Text()
	return &s
}

func parseNumber(field string, bound *string, nt query.NumericType) (*float64, error) {
	if bound == nil || strings.TrimSpace(*bound) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*bound)
	var (
		v   float64
		err error
	)
	switch nt {
	case query.NumericInt, query.NumericLong:
		bits := 64
		if nt == query.NumericInt {
			bits = 32
		}
		var n int64
		n, err = strconv.ParseInt(s, 10, bits)
		v = float64(n)
	case query.NumericFloat:
		v, err = strconv.ParseFloat(s, 32)
	default:
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s bound %q is not a valid %s", domain.ErrInvalidQuery, field, s, nt)
	}
	return &v, nil
}

// dateRange keeps normalized bounds verbatim; blank bounds are open.
func (c compiler) dateRange(d *query.Description) (query.Node, error) {
	bound := func(b *string) (*string, error) {
		if b == nil || strings.TrimSpace(*b) == "" {
			return nil, nil
		}
		s := strings.TrimSpace(*b)
		if _, err := query.ParseDate(s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	lower, err := bound(d.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := bound(d.Upper)
	if err != nil {
		return nil, err
	}
	return query.Range{
		Field: d.Field, Kind: query.RangeDate,
		Lower: lower, Upper: upper,
		IncludeLower: d.Inclusive, IncludeUpper: d.Inclusive,
	}, nil
}

// boolean drops children that compile to nothing.
func (c compiler) boolean(d *query.Description) (query.Node, error) {
	if err := c.checkClauses(len(d.Clauses)); err != nil {
		return nil, err
	}
	clauses := make([]query.Clause, 0, len(d.Clauses))
	for _, cd := range d.Clauses {
		occur, ok := query.OccurOf(cd.Required, cd.Prohibited)
		if !ok {
			return nil, fmt.Errorf("%w: clause is both required and prohibited", domain.ErrInvalidQuery)
		}
		n, err := c.compile(cd.Query)
		if err != nil {
			return nil, err
		}
		if n == nil {
			continue
		}
		clauses = append(clauses, query.Clause{Occur: occur, Node: n})
	}
	return query.Boolean{Clauses: clauses}, nil
}

func (c compiler) checkClauses(n int) error {
	if c.maxClauses > 0 && n > c.maxClauses {
		return &domain.TooManyClausesError{Count: n, Max: c.maxClauses}
	}
	return nil
}

// compileQuery builds the executable query of a call: the caller's
// description (or one built from the request) ANDed with the access
// clause, the locale restriction and the configured boost.
func (s *Service) compileQuery(req *request.Request, desc *query.Description, language string) (*query.Compiled, error) {
	c := compiler{
		analyzer:   analysis.NewPerField(s.analyzers.ForLanguage(language), s.cfg.TokenizedFields),
		numeric:    s.cfg.NumericTypes(),
		maxClauses: s.cfg.MaxClauseCount,
	}

	d := desc
	if d == nil {
		built := buildDescription(req)
		d = &built
	}
	if access := accessClause(req); access != nil {
		top := query.BooleanOf(query.MustOf(*d), query.MustOf(*access))
		d = &top
	}

	root, err := c.compile(d)
	if err != nil {
		return nil, err
	}

	compiled := &query.Compiled{}
	if lc, locales := s.localeClause(language); lc != nil {
		compiled.Locales = locales
		clauses := []query.Clause{*lc}
		if root != nil {
			clauses = append([]query.Clause{{Occur: query.Must, Node: root}}, clauses...)
		}
		root = query.Boolean{Clauses: clauses}
	}
	if root == nil {
		root = query.MatchAll{}
	}
	compiled.Root = root

	if s.boostName != "" {
		b, err := s.boosts.New(s.boostName, s.boostParams)
		if err != nil {
			s.logger.Warn("boost unavailable, searching unboosted", zap.String("boost", s.boostName), zap.Error(err))
			metrics.BoostFailuresTotal.WithLabelValues(s.boostName).Inc()
		} else {
			compiled = compiled.WithBoost(b)
		}
	}
	return compiled, nil
}

// localeClause restricts matches to documents in language, and in the
// whitelisted languages when configured.
func (s *Service) localeClause(language string) (*query.Clause, []string) {
	if language == "" {
		return nil, nil
	}
	switch s.cfg.LocaleRestriction {
	case config.LocaleOff:
		return nil, nil
	case config.LocaleWhitelist:
		locales := append([]string{language}, s.cfg.LocaleWhitelist...)
		alts := make([]query.Clause, len(locales))
		for i, l := range locales {
			alts[i] = query.Clause{Occur: query.Should, Node: query.Term{Field: query.LocaleField, Text: l}}
		}
		return &query.Clause{Occur: query.Must, Node: query.Boolean{Clauses: alts}}, locales
	default:
		return &query.Clause{Occur: query.Must, Node: query.Term{Field: query.LocaleField, Text: language}},
			[]string{language}
	}
}
