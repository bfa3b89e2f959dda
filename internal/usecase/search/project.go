package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mdsearch/internal/domain/record"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
)

// Stored fields projected into the info block.
const (
	idField         = "_id"
	uuidField       = "_uuid"
	schemaField     = "_schema"
	createDateField = "_createDate"
	changeDateField = "_changeDate"
	sourceField     = "_source"
	categoryField   = "_cat"
)

var infoFields = []string{idField, uuidField, schemaField, createDateField, changeDateField, sourceField}

// project loads each hit through h and shapes it according to m.
func (s *Service) project(
	ctx context.Context, h *snapshot.Handle, hits []result.Hit, m mode.Mode, language string,
) ([]record.Record, error) {
	fields := s.projectionFields(m, language)
	out := make([]record.Record, 0, len(hits))
	for _, hit := range hits {
		stored, err := h.Fetch(ctx, hit.Ref, fields)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", hit.Ref, err)
		}

		rec := record.Record{Mode: m}
		switch m {
		case mode.Minimal:
			rec.Info = infoOf(stored, false)
		case mode.Dump:
			rec.Info = infoOf(stored, true)
			rec.Fields = s.dumpFields(stored, language)
		default:
			rec.Info = record.Info{ID: stored.First(idField)}
		}
		if s.cfg.TrackDocScores {
			score := hit.Score
			rec.Info.Score = &score
		}
		out = append(out, rec)
	}
	return out, nil
}

// projectionFields returns the stored fields a mode reads, or nil for all.
func (s *Service) projectionFields(m mode.Mode, language string) []string {
	switch m {
	case mode.Minimal:
		return infoFields
	case mode.Dump:
		if len(s.cfg.DumpFields) == 0 {
			return nil
		}
		fields := append([]string(nil), infoFields...)
		fields = append(fields, categoryField)
		for _, df := range s.cfg.DumpFields {
			fields = append(fields, df.Field)
		}
		if language != "" {
			for _, f := range s.cfg.MultilingualFields {
				fields = append(fields, f+"_"+language)
			}
		}
		return fields
	default:
		return []string{idField}
	}
}

func infoOf(f result.Fields, dump bool) record.Info {
	info := record.Info{
		ID:         f.First(idField),
		UUID:       f.First(uuidField),
		Schema:     f.First(schemaField),
		CreateDate: f.First(createDateField),
		ChangeDate: f.First(changeDateField),
		Source:     f.First(sourceField),
	}
	if dump {
		info.CreateDate = strings.ToUpper(info.CreateDate)
		info.ChangeDate = strings.ToUpper(info.ChangeDate)
		info.Categories = f.Values(categoryField)
	}
	return info
}

// dumpFields emits the allowlisted stored fields, or every stored field when
// no allowlist is configured. Multilingual fields emit their variant in
// language under the logical name when it is not blank.
func (s *Service) dumpFields(f result.Fields, language string) []record.Field {
	type entry struct{ field, name string }

	var entries []entry
	if len(s.cfg.DumpFields) > 0 {
		for _, df := range s.cfg.DumpFields {
			entries = append(entries, entry{df.Field, df.Name})
		}
	} else {
		variants := make(map[string]bool)
		if language != "" {
			for _, ml := range s.cfg.MultilingualFields {
				variants[ml+"_"+language] = true
			}
		}
		for _, name := range f.Names() {
			if !variants[name] {
				entries = append(entries, entry{name, name})
			}
		}
	}

	multilingual := make(map[string]bool, len(s.cfg.MultilingualFields))
	for _, ml := range s.cfg.MultilingualFields {
		multilingual[ml] = true
	}

	var out []record.Field
	for _, e := range entries {
		values := f.Values(e.field)
		if multilingual[e.field] && language != "" {
			if localized := nonBlank(f.Values(e.field + "_" + language)); len(localized) > 0 {
				values = localized
			}
		}
		for _, v := range values {
			out = append(out, record.Field{Name: e.name, Value: v})
		}
	}
	return out
}
