package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/mdsearch/internal/domain/record"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// SuggestInput asks for the most frequent values of Field among the
// documents matching Input.
type SuggestInput struct {
	Input
	Field string
	// Value filters candidate values by case-insensitive containment.
	Value string
	// MaxTerms caps the number of distinct values counted. Zero means no cap.
	MaxTerms int
	// Threshold drops values seen in fewer documents.
	Threshold int
}

// TermFrequency is one suggested value.
type TermFrequency struct {
	Term      string `json:"term"`
	Frequency int    `json:"frequency"`
}

// Suggest counts values of a stored field over the top matching documents,
// most frequent first.
func (s *Service) Suggest(ctx context.Context, in SuggestInput) ([]TermFrequency, error) {
	start := time.Now()
	out, err := s.suggest(ctx, in)
	observe("suggest", start, err)
	return out, err
}

func (s *Service) suggest(ctx context.Context, in SuggestInput) ([]TermFrequency, error) {
	needle := strings.ToLower(strings.NewReplacer("*", "", "?", "").Replace(strings.TrimSpace(in.Value)))

	counts := make(map[string]int)
	err := s.scan(ctx, in.Input, s.cfg.MaxHits, []string{in.Field}, func(_ result.Hit, f result.Fields) bool {
		for _, v := range f.Values(in.Field) {
			if !strings.Contains(strings.ToLower(v), needle) {
				continue
			}
			if _, seen := counts[v]; !seen && in.MaxTerms > 0 && len(counts) >= in.MaxTerms {
				continue
			}
			counts[v]++
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	out := make([]TermFrequency, 0, len(counts))
	for term, n := range counts {
		if n >= in.Threshold {
			out = append(out, TermFrequency{Term: term, Frequency: n})
		}
	}
	slices.SortFunc(out, func(a, b TermFrequency) int {
		return cmp.Or(cmp.Compare(b.Frequency, a.Frequency), cmp.Compare(a.Term, b.Term))
	})
	return out, nil
}

// AllUUIDs returns the uuids of the top maxHits matching documents in
// ranked order.
func (s *Service) AllUUIDs(ctx context.Context, in Input, maxHits int) ([]string, error) {
	var out []string
	err := s.scan(ctx, in, maxHits, []string{uuidField}, func(_ result.Hit, f result.Fields) bool {
		if u := f.First(uuidField); u != "" {
			out = append(out, u)
		}
		return true
	})
	return out, err
}

// Stored fields of the administrative record view.
var mdInfoFields = []string{
	idField, uuidField, "_root", schemaField, createDateField, changeDateField, sourceField,
	"_isTemplate", "_title", "_isHarvested", ownerField, groupOwnerField,
}

// AllInfo returns the administrative view of the top maxHits matching
// documents in ranked order.
func (s *Service) AllInfo(ctx context.Context, in Input, maxHits int) ([]record.MdInfo, error) {
	var out []record.MdInfo
	err := s.scan(ctx, in, maxHits, mdInfoFields, func(_ result.Hit, f result.Fields) bool {
		out = append(out, record.MdInfo{
			ID:          f.First(idField),
			UUID:        f.First(uuidField),
			Root:        f.First("_root"),
			Schema:      f.First(schemaField),
			CreateDate:  f.First(createDateField),
			ChangeDate:  f.First(changeDateField),
			Source:      f.First(sourceField),
			IsTemplate:  f.First("_isTemplate"),
			Title:       f.First("_title"),
			IsHarvested: f.First("_isHarvested"),
			Owner:       f.First(ownerField),
			GroupOwner:  f.First(groupOwnerField),
		})
		return true
	})
	return out, err
}

// scan runs the search of in without facets and hands the stored fields of
// up to limit ranked hits to fn until it returns false.
func (s *Service) scan(
	ctx context.Context, in Input, limit int, fields []string, fn func(result.Hit, result.Fields) bool,
) error {
	p, err := s.prepare(ctx, in)
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = s.cfg.MaxHits
	}

	params := snapshot.Params{Query: p.compiled, Filter: p.filter, Sort: p.sort, Limit: limit}
	return s.withSnapshot(ctx, p.language, in.LastVersion, func(h *snapshot.Handle) error {
		ranked, err := h.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("execute search: %w", err)
		}
		for _, hit := range ranked.Hits[:min(limit, len(ranked.Hits))] {
			f, err := h.Fetch(ctx, hit.Ref, fields)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", hit.Ref, err)
			}
			if !fn(hit, f) {
				break
			}
		}
		return nil
	})
}
