package search

import (
	"cmp"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
)

// summarize renders engine facet counts into summary groups in
// configuration order. Groups the engine could not count are left out.
func (s *Service) summarize(ranked *result.Ranked, groups []facet.Config, language string) *facet.Summary {
	sum := &facet.Summary{Count: ranked.Total, Type: facet.SummaryTypeLocal, Groups: []facet.Group{}}

	counts := make(map[string]result.FacetCounts, len(ranked.Facets))
	for _, fc := range ranked.Facets {
		counts[fc.Path] = fc
	}

	for _, cfg := range groups {
		fc, ok := counts[cfg.Path]
		if !ok {
			continue
		}
		if fc.Err != nil {
			s.logger.Warn("facet group omitted", zap.String("path", cfg.Path), zap.Error(fc.Err))
			metrics.FacetErrorsTotal.WithLabelValues(cfg.Path).Inc()
			continue
		}
		sum.Groups = append(sum.Groups, facet.Group{
			Name:    cfg.Name,
			Item:    cfg.Item,
			Entries: s.entries(cfg, fc.Values, language),
		})
	}
	return sum
}

func (s *Service) entries(cfg facet.Config, values []result.ValueCount, language string) []facet.Entry {
	var tr Translator
	if cfg.Translator != "" && s.translators != nil {
		tr, _ = s.translators.Translator(cfg.Translator, language)
	}

	out := make([]facet.Entry, len(values))
	for i, v := range values {
		out[i] = facet.Entry{Value: v.Value, Count: strconv.Itoa(int(v.Count))}
		if tr != nil {
			if label, ok := tr.Translate(v.Value); ok {
				out[i].Label = label
			}
		}
	}

	switch cfg.SortBy {
	case facet.ByLabel:
		slices.SortStableFunc(out, func(a, b facet.Entry) int {
			return cmp.Compare(cmp.Or(a.Label, a.Value), cmp.Or(b.Label, b.Value))
		})
	case facet.ByNumValue:
		s.sortNumeric(cfg.Path, out)
	default:
		return out
	}
	if cfg.Order == facet.Desc {
		slices.Reverse(out)
	}
	return out
}

// sortNumeric orders entries by their value as a number. Values that do not
// parse compare lexically.
func (s *Service) sortNumeric(path string, out []facet.Entry) {
	warned := false
	slices.SortStableFunc(out, func(a, b facet.Entry) int {
		x, errA := strconv.ParseFloat(a.Value, 64)
		y, errB := strconv.ParseFloat(b.Value, 64)
		if errA != nil || errB != nil {
			if !warned {
				s.logger.Warn("non-numeric facet value, comparing as text", zap.String("path", path))
				warned = true
			}
			return cmp.Compare(a.Value, b.Value)
		}
		return cmp.Compare(x, y)
	})
}
