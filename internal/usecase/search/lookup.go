package search

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/sortkey"
)

// LookupInput reads stored fields of documents by identifier.
type LookupInput struct {
	// Field is the identifier field, _uuid when empty.
	Field string
	Value string
	// Language is preferred when a record is indexed in several languages.
	Language string
	// Fields to return; nil returns every stored field.
	Fields []string
	// All returns every match instead of the first.
	All         bool
	LastVersion int64
}

// Lookup returns the stored fields of the documents whose identifier field
// equals Value, documents in Language first. It does not apply access
// control and is meant for internal callers.
func (s *Service) Lookup(ctx context.Context, in LookupInput) ([]result.Fields, error) {
	start := time.Now()
	out, err := s.lookup(ctx, in)
	observe("lookup", start, err)
	return out, err
}

func (s *Service) lookup(ctx context.Context, in LookupInput) ([]result.Fields, error) {
	field := cmp.Or(in.Field, uuidField)
	language := cmp.Or(in.Language, s.cfg.DefaultLanguage)

	limit := 1
	if in.All {
		limit = s.cfg.MaxHits
	}
	params := snapshot.Params{
		Query: &query.Compiled{Root: query.Term{Field: field, Text: in.Value}},
		Sort:  sortkey.New(sortkey.Key{Kind: sortkey.LangOnTop, Locale: language}),
		Limit: limit,
	}

	var out []result.Fields
	err := s.withSnapshot(ctx, language, in.LastVersion, func(h *snapshot.Handle) error {
		ranked, err := h.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("execute lookup: %w", err)
		}
		for _, hit := range ranked.Hits[:min(limit, len(ranked.Hits))] {
			f, err := h.Fetch(ctx, hit.Ref, in.Fields)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", hit.Ref, err)
			}
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s %q: %w", field, in.Value, domain.ErrNotFound)
	}
	return out, nil
}
