package search

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/mdsearch/internal/analysis"
	"github.com/kailas-cloud/mdsearch/internal/config"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/sortkey"
)

func testCompiler() compiler {
	return compiler{
		analyzer:   analysis.NewPerField(analysis.NewStandard("eng"), []string{"any", "title"}),
		numeric:    map[string]query.NumericType{"_scaleDenominator": query.NumericInt},
		maxClauses: 16384,
	}
}

func strp(s string) *string { return &s }

// --- compiler tests ---

func TestCompiler_TermLike(t *testing.T) {
	c := testCompiler()

	tests := []struct {
		name string
		desc query.Description
		want query.Node
	}{
		{"single token", query.TermOf("any", "Water"), query.Term{Field: "any", Text: "water"}},
		{"wildcard preserved", query.TermOf("any", "Hydro*"), query.Wildcard{Field: "any", Pattern: "hydro*"}},
		{"untokenized wildcard", query.TermOf("_uuid", "AB?"), query.Wildcard{Field: "_uuid", Pattern: "AB?"}},
		{
			"explicit wildcard kind",
			query.Description{Kind: query.KindWildcard, Field: "title", Text: "La*s"},
			query.Wildcard{Field: "title", Pattern: "la*s"},
		},
		{
			"fuzzy",
			query.Description{Kind: query.KindFuzzy, Field: "any", Text: "watr", Similarity: 0.8},
			query.Fuzzy{Field: "any", Text: "watr", Similarity: 0.8},
		},
		{
			"fuzzy default similarity",
			query.Description{Kind: query.KindFuzzy, Field: "any", Text: "watr"},
			query.Fuzzy{Field: "any", Text: "watr", Similarity: defaultSimilarity},
		},
		{
			"similarity one is exact",
			query.Description{Kind: query.KindTerm, Field: "any", Text: "water", Similarity: 1},
			query.Term{Field: "any", Text: "water"},
		},
		{"quoted phrase", query.TermOf("any", `"Water Body"`), query.Phrase{Field: "any", Terms: []string{"water", "body"}}},
		{
			"several tokens are all required",
			query.TermOf("any", "water body"),
			query.Boolean{Clauses: []query.Clause{
				{Occur: query.Must, Node: query.Term{Field: "any", Text: "water"}},
				{Occur: query.Must, Node: query.Term{Field: "any", Text: "body"}},
			}},
		},
		{"quoted untokenized", query.TermOf("_uuid", `"abc-1"`), query.Term{Field: "_uuid", Text: "abc-1"}},
		{"stopwords only", query.TermOf("any", "the of"), nil},
		{"prefix", query.Description{Kind: query.KindPrefix, Field: "title", Text: "Lake"}, query.Prefix{Field: "title", Text: "lake"}},
		{"match all", query.MatchAllOf(), query.MatchAll{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.compile(&tt.desc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("compile = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompiler_Phrase(t *testing.T) {
	c := testCompiler()
	d := query.PhraseOf("title", "The", "Great", "Lakes")

	got, err := c.compile(&d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := query.Phrase{Field: "title", Terms: []string{"great", "lakes"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compile = %#v, want %#v", got, want)
	}

	empty := query.PhraseOf("title", "the")
	got, err = c.compile(&empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p, ok := got.(query.Phrase); !ok || len(p.Terms) != 0 {
		t.Errorf("expected empty phrase, got %#v", got)
	}
}

func TestCompiler_BooleanPruning(t *testing.T) {
	c := testCompiler()
	d := query.BooleanOf(
		query.MustOf(query.TermOf("any", "the")),
		query.ShouldOf(query.TermOf("any", "water")),
		query.MustNotOf(query.TermOf("_locale", "fre")),
	)

	got, err := c.compile(&d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := query.Boolean{Clauses: []query.Clause{
		{Occur: query.Should, Node: query.Term{Field: "any", Text: "water"}},
		{Occur: query.MustNot, Node: query.Term{Field: "_locale", Text: "fre"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compile = %#v, want %#v", got, want)
	}
}

func TestCompiler_Ranges(t *testing.T) {
	c := testCompiler()

	num := query.Description{Kind: query.KindRange, Field: "_scaleDenominator", Lower: strp("1000"), Inclusive: true}
	got, err := c.compile(&num)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := got.(query.Range)
	if r.Kind != query.RangeNumeric || r.LowerNum == nil || *r.LowerNum != 1000 || r.UpperNum != nil {
		t.Errorf("unexpected numeric range %#v", r)
	}

	lex := query.Description{Kind: query.KindRange, Field: "title", Lower: strp("Alpha"), Upper: strp("Delta")}
	got, err = c.compile(&lex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r = got.(query.Range)
	if r.Kind != query.RangeText || *r.Lower != "alpha" || *r.Upper != "delta" {
		t.Errorf("unexpected lexical range %#v", r)
	}

	date := query.DateRangeOf("_changeDate", "2020-01-01T00:00:00", "")
	got, err = c.compile(&date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r = got.(query.Range)
	if r.Kind != query.RangeDate || *r.Lower != "2020-01-01T00:00:00" || r.Upper != nil {
		t.Errorf("unexpected date range %#v", r)
	}
}

func TestCompiler_Errors(t *testing.T) {
	c := testCompiler()
	c.maxClauses = 2

	tests := []struct {
		name string
		desc query.Description
		want error
	}{
		{"unknown kind", query.Description{Kind: "geo"}, domain.ErrUnsupportedQueryNode},
		{
			"required and prohibited",
			query.BooleanOf(query.ClauseDescription{Required: true, Prohibited: true, Query: &query.Description{Kind: query.KindMatchAll}}),
			domain.ErrInvalidQuery,
		},
		{
			"clause ceiling",
			query.BooleanOf(
				query.ShouldOf(query.TermOf("any", "a1")),
				query.ShouldOf(query.TermOf("any", "a2")),
				query.ShouldOf(query.TermOf("any", "a3")),
			),
			domain.ErrTooManyClauses,
		},
		{"analyzed tokens over ceiling", query.TermOf("any", "one two three"), domain.ErrTooManyClauses},
		{
			"bad number",
			query.Description{Kind: query.KindRange, Field: "_scaleDenominator", Upper: strp("many")},
			domain.ErrInvalidQuery,
		},
		{"bad date", query.DateRangeOf("_changeDate", "yesterday", ""), domain.ErrInvalidDate},
		{
			"nested failure",
			query.BooleanOf(query.MustOf(query.Description{Kind: "geo"})),
			domain.ErrUnsupportedQueryNode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.compile(&tt.desc)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// --- compileQuery tests ---

func TestCompileQuery_LocaleRestriction(t *testing.T) {
	tests := []struct {
		name        string
		restriction string
		language    string
		wantLocales []string
		wantClause  string
	}{
		{"only", config.LocaleOnly, "fre", []string{"fre"}, "+_locale:fre"},
		{"whitelist", config.LocaleWhitelist, "fre", []string{"fre", "eng"}, "+(_locale:fre _locale:eng)"},
		{"off", config.LocaleOff, "fre", nil, ""},
		{"no language", config.LocaleOnly, "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSearchConfig()
			cfg.LocaleRestriction = tt.restriction
			cfg.LocaleWhitelist = []string{"eng"}
			s := New(&mockManager{}, &mockAuth{}, cfg)

			req := request.New()
			req.Set(request.IsAdmin, "true")
			c, err := s.compileQuery(req, nil, tt.language)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(c.Locales, tt.wantLocales) {
				t.Errorf("locales = %v, want %v", c.Locales, tt.wantLocales)
			}
			if tt.wantClause == "" {
				if _, ok := c.Root.(query.MatchAll); !ok {
					t.Errorf("expected match all, got %s", c.Root)
				}
				return
			}
			if !strings.Contains(c.String(), tt.wantClause) {
				t.Errorf("expected %q in %q", tt.wantClause, c.String())
			}
		})
	}
}

func TestCompileQuery_ExplicitDescriptionKeepsAccessClause(t *testing.T) {
	cfg := testSearchConfig()
	cfg.LocaleRestriction = config.LocaleOff
	s := New(&mockManager{}, &mockAuth{}, cfg)

	req := request.New()
	req.Set(request.Group, "3")
	d := query.TermOf("title", "lakes")
	c, err := s.compileQuery(req, &d, "eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.String()
	if !strings.Contains(got, "title:lakes") || !strings.Contains(got, "_op0:3") {
		t.Errorf("expected description and access clause, got %q", got)
	}
}

// --- request builder tests ---

func TestBuildDescription(t *testing.T) {
	req := request.New()
	req.Add("any", "water")
	req.Add("any", "lake")
	req.Add("title", "rivers or lakes")
	req.Add("keyword", "  ")
	req.Add(request.SortBy, "title")
	req.Add(request.DateFrom, "2020-01-01T00:00:00")
	req.Add(request.DateTo, "2021-01-01T00:00:00")

	d := buildDescription(req)
	want := query.BooleanOf(
		query.MustOf(query.TermOf("any", "water")),
		query.MustOf(query.TermOf("any", "lake")),
		query.MustOf(query.BooleanOf(
			query.ShouldOf(query.TermOf("title", "rivers")),
			query.ShouldOf(query.TermOf("title", "lakes")),
		)),
		query.MustOf(query.DateRangeOf("_changeDate", "2020-01-01T00:00:00", "2021-01-01T00:00:00")),
	)
	if !reflect.DeepEqual(d, want) {
		t.Errorf("buildDescription = %#v, want %#v", d, want)
	}

	if got := buildDescription(request.New()); got.Kind != query.KindMatchAll {
		t.Errorf("expected match all for an empty request, got %s", got.Kind)
	}
}

func TestAccessClause(t *testing.T) {
	admin := request.New()
	admin.Set(request.IsAdmin, "true")
	if accessClause(admin) != nil {
		t.Error("admin must not be restricted")
	}

	reviewer := request.New()
	reviewer.Set(request.Group, "1", " ")
	reviewer.Set(request.Owner, "7")
	reviewer.Set(request.IsReviewer, "true")
	d := accessClause(reviewer)
	var fields []string
	for _, c := range d.Clauses {
		if c.Required || c.Prohibited {
			t.Errorf("access alternatives must be optional, got %+v", c)
		}
		fields = append(fields, c.Query.Field+":"+c.Query.Text)
	}
	want := []string{"_op0:1", "_owner:7", "_groupOwner:1"}
	if !slices.Equal(fields, want) {
		t.Errorf("access fields = %v, want %v", fields, want)
	}

	if d := accessClause(request.New()); d == nil || len(d.Clauses) != 0 {
		t.Errorf("no groups and no owner should match nothing, got %#v", d)
	}
}

func TestNormalizeDates_Idempotent(t *testing.T) {
	req := request.New()
	req.Set(request.DateFrom, "2020-03-04")
	req.Set(request.DateTo, "")
	req.Set(request.CreationDateFrom, "")
	req.Set(request.CreationDateTo, "")
	req.Set(request.RevisionDateTo, "March 5, 2021")

	if err := normalizeDates(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checks := map[string]string{
		request.DateFrom:         "2020-03-04T00:00:00",
		request.DateTo:           "9999-01-01T00:00:00",
		request.RevisionDateFrom: "0000-01-01T00:00:00",
		request.RevisionDateTo:   "2021-03-05T00:00:00",
	}
	for name, want := range checks {
		if got := req.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if req.Has(request.CreationDateFrom) || req.Has(request.CreationDateTo) {
		t.Error("blank pair should be removed")
	}

	before := req.Clone()
	if err := normalizeDates(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range before.Names() {
		if req.Get(name) != before.Get(name) {
			t.Errorf("%s changed on second pass: %q -> %q", name, before.Get(name), req.Get(name))
		}
	}
}

func TestNormalizeDates_Invalid(t *testing.T) {
	req := request.New()
	req.Set(request.DateFrom, "not a date")
	if err := normalizeDates(req); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

// --- sort tests ---

func TestBuildSort(t *testing.T) {
	tests := []struct {
		name     string
		onTop    bool
		language string
		params   map[string]string
		want     string
	}{
		{"default relevance", false, "eng", nil, "<score>"},
		{"language on top", true, "fre", nil, "<lang:fre>,<score>"},
		{"on top needs language", true, "", nil, "<score>"},
		{"title reversed without order", false, "", map[string]string{"sortBy": "title"}, "_title<string>!,<score>"},
		{"rating ordered", false, "", map[string]string{"sortBy": "rating", "sortOrder": "asc"}, "_rating<integer>,<score>"},
		{"locale field", false, "ger", map[string]string{"sortBy": "_org", "sortOrder": "x"}, "_org<localeString>,<score>"},
		{"plain field", false, "", map[string]string{"sortBy": "_org", "sortOrder": "x"}, "_org<string>,<score>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSearchConfig()
			cfg.RequestedLanguageOnTop = tt.onTop
			s := New(&mockManager{}, &mockAuth{}, cfg)

			req := request.New()
			for k, v := range tt.params {
				req.Set(k, v)
			}
			first := s.buildSort(req, tt.language)
			if got := first.String(); got != tt.want {
				t.Errorf("buildSort = %q, want %q", got, tt.want)
			}
			if again := s.buildSort(req, tt.language); again.String() != first.String() {
				t.Errorf("sort not deterministic: %q vs %q", first, again)
			}
		})
	}
}

func TestBuildSort_LocaleKeyCarriesLanguage(t *testing.T) {
	s := New(&mockManager{}, &mockAuth{}, testSearchConfig())
	req := request.New()
	req.Set(request.SortBy, "_org")

	keys := s.buildSort(req, "fre").Keys()
	if keys[0].Kind != sortkey.LocaleString || keys[0].Locale != "fre" || !keys[0].Reverse {
		t.Errorf("unexpected key %+v", keys[0])
	}
}

// --- language tests ---

func TestDetermineLanguage(t *testing.T) {
	tests := []struct {
		name    string
		ignore  bool
		detect  bool
		params  map[string]string
		context string
		want    string
	}{
		{"ignored", true, false, map[string]string{"requestedLanguage": "fre"}, "ger", ""},
		{"requested", false, false, map[string]string{"requestedLanguage": "fre"}, "ger", "fre"},
		{"context", false, false, nil, "ger", "ger"},
		{"default", false, false, nil, "", "eng"},
		{"no detection without text", false, true, nil, "ger", "ger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSearchConfig()
			cfg.IgnoreRequestedLanguage = tt.ignore
			cfg.AutoDetectLanguage = tt.detect
			s := New(&mockManager{}, &mockAuth{}, cfg)

			req := request.New()
			for k, v := range tt.params {
				req.Set(k, v)
			}
			if got := s.determineLanguage(req, tt.context); got != tt.want {
				t.Errorf("determineLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- paging tests ---

func TestWindow(t *testing.T) {
	tests := []struct {
		name              string
		from, to          int
		total, ranked     int
		wantStart, wantEnd int
		wantErr           bool
	}{
		{"first page", 1, 5, 5, 5, 0, 5, false},
		{"clamped to total", 1, 10, 5, 5, 0, 5, false},
		{"past the end", 11, 20, 5, 5, 0, 0, true},
		{"empty result first page", 1, 10, 0, 0, 0, 0, false},
		{"window short of total", 1, 10, 50, 4, 0, 0, true},
		{"second page", 11, 20, 25, 20, 10, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := window(tt.from, tt.to, tt.total, tt.ranked)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInsufficientResults) {
					t.Errorf("expected ErrInsufficientResults, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("window = [%d,%d), want [%d,%d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
