package mdsearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mdsearch/internal/domain/geo"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
	searchuc "github.com/kailas-cloud/mdsearch/internal/usecase/search"
)

// SearchBuilder is a fluent builder for catalog searches.
type SearchBuilder struct {
	c   *Client
	req *request.Request

	sess        *session.Session
	token       string
	language    string
	resultType  string
	lastVersion int64
}

func newSearchBuilder(c *Client) *SearchBuilder {
	return &SearchBuilder{c: c, req: request.New()}
}

// Any matches text against the full-text field.
func (b *SearchBuilder) Any(text string) *SearchBuilder {
	b.req.Set(request.Any, text)
	return b
}

// Where adds values for a request parameter. Repeated calls accumulate.
func (b *SearchBuilder) Where(name string, values ...string) *SearchBuilder {
	for _, v := range values {
		b.req.Add(name, v)
	}
	return b
}

// Groups restricts results to the given groups. The caller must be
// authorized for each of them.
func (b *SearchBuilder) Groups(ids ...string) *SearchBuilder {
	return b.Where(request.Group, ids...)
}

// ChangedBetween restricts the change date. Either bound may be empty.
func (b *SearchBuilder) ChangedBetween(from, to string) *SearchBuilder {
	if from != "" {
		b.req.Set(request.DateFrom, from)
	}
	if to != "" {
		b.req.Set(request.DateTo, to)
	}
	return b
}

// Geometry filters by a WKT geometry and a spatial relation such as
// "intersection" or "within".
func (b *SearchBuilder) Geometry(wkt, relation string) *SearchBuilder {
	b.req.Set(request.Geometry, wkt)
	if relation != "" {
		b.req.Set(request.Relation, relation)
	}
	return b
}

// Regions filters by stored region geometries.
func (b *SearchBuilder) Regions(relation string, ids ...string) *SearchBuilder {
	return b.Geometry(geo.RegionPrefix+strings.Join(ids, ","), relation)
}

// SortBy orders results by field, descending unless ascending is set.
func (b *SearchBuilder) SortBy(field string, ascending bool) *SearchBuilder {
	b.req.Set(request.SortBy, field)
	if ascending {
		b.req.Set(request.SortOrder, "reverse")
	} else {
		b.req.Del(request.SortOrder)
	}
	return b
}

// Page selects the 1-based inclusive range of records to return.
func (b *SearchBuilder) Page(from, to int) *SearchBuilder {
	b.req.Set(request.From, strconv.Itoa(from))
	b.req.Set(request.To, strconv.Itoa(to))
	return b
}

// Fast selects the projection: "true" for the info block only, "index"
// for stored fields.
func (b *SearchBuilder) Fast(mode string) *SearchBuilder {
	b.req.Set(request.Fast, mode)
	return b
}

// WithoutSummary skips facet counting.
func (b *SearchBuilder) WithoutSummary() *SearchBuilder {
	b.req.Set(request.BuildSummary, "false")
	return b
}

// ResultType selects the facet summary configuration.
func (b *SearchBuilder) ResultType(rt string) *SearchBuilder {
	b.resultType = rt
	return b
}

// Language sets the caller's language.
func (b *SearchBuilder) Language(lang string) *SearchBuilder {
	b.language = lang
	return b
}

// As runs the search for sess.
func (b *SearchBuilder) As(sess Session) *SearchBuilder {
	b.sess = &sess
	return b
}

// Token runs the search for the session carried by a JWT.
func (b *SearchBuilder) Token(token string) *SearchBuilder {
	b.token = token
	return b
}

// MinVersion rejects index snapshots older than v.
func (b *SearchBuilder) MinVersion(v int64) *SearchBuilder {
	b.lastVersion = v
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (*Outcome, error) {
	in, err := b.input()
	if err != nil {
		return nil, err
	}
	out, err := b.c.app.Search.Search(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return out, nil
}

// UUIDs returns the uuids of the first maxHits matches.
func (b *SearchBuilder) UUIDs(ctx context.Context, maxHits int) ([]string, error) {
	in, err := b.input()
	if err != nil {
		return nil, err
	}
	ids, err := b.c.app.Search.AllUUIDs(ctx, in, maxHits)
	if err != nil {
		return nil, fmt.Errorf("uuids: %w", err)
	}
	return ids, nil
}

// Suggest returns the most frequent values of field among matches that
// contain value.
func (b *SearchBuilder) Suggest(ctx context.Context, field, value string, maxTerms, threshold int) ([]TermFrequency, error) {
	in, err := b.input()
	if err != nil {
		return nil, err
	}
	terms, err := b.c.app.Search.Suggest(ctx, searchuc.SuggestInput{
		Input:     in,
		Field:     field,
		Value:     value,
		MaxTerms:  maxTerms,
		Threshold: threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return terms, nil
}

func (b *SearchBuilder) input() (searchuc.Input, error) {
	sess := session.Anonymous()
	switch {
	case b.sess != nil:
		sess = *b.sess
	case b.token != "":
		s, err := b.c.sessions.Session(b.token)
		if err != nil {
			return searchuc.Input{}, fmt.Errorf("session: %w", err)
		}
		sess = s
	}
	return searchuc.Input{
		Request:         b.req.Clone(),
		Session:         sess,
		ContextLanguage: b.language,
		LastVersion:     b.lastVersion,
		Config: searchuc.ServiceConfig{
			ResultType: b.resultType,
			GUIService: b.c.app.Config.SearchLog.GUIService,
		},
	}, nil
}
