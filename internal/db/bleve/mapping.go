// Package bleve is the embedded engine driver: versioned in-process bleve
// indexes ranked by the shared collector.
package bleve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
)

// bleve reserves _id for document ids, so the catalog identifier is
// indexed under another name.
const (
	catalogIDField = "_id"
	storedIDField  = "md_id"
)

func fieldName(name string) string {
	if name == catalogIDField {
		return storedIDField
	}
	return name
}

func catalogName(name string) string {
	if name == storedIDField {
		return catalogIDField
	}
	return name
}

// NewMapping builds an index mapping from the catalog index definition.
// Undeclared fields are indexed as keywords, matching how the query side
// treats them.
func NewMapping(def *db.IndexDefinition) mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	for _, f := range def.Fields {
		doc.AddFieldMappingsAt(fieldName(f.Name), fieldMapping(f.Type))
	}
	im.DefaultMapping = doc
	return im
}

func fieldMapping(t db.IndexFieldType) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch t {
	case db.IndexFieldText:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
	case db.IndexFieldNumeric:
		fm = bleve.NewNumericFieldMapping()
	case db.IndexFieldDate:
		fm = bleve.NewDateTimeFieldMapping()
	case db.IndexFieldStored:
		fm = bleve.NewTextFieldMapping()
		fm.Index = false
	default:
		fm = bleve.NewKeywordFieldMapping()
	}
	fm.Store = true
	fm.IncludeInAll = false
	return fm
}

// NewMemIndex creates an in-memory index for def.
func NewMemIndex(def *db.IndexDefinition) (bleve.Index, error) {
	idx, err := bleve.NewMemOnly(NewMapping(def))
	if err != nil {
		return nil, &db.Error{Op: db.OpBleveOpen, Err: err}
	}
	return idx, nil
}

// Put indexes fields as document ref. Numeric and date fields are converted
// to their typed form; repeated values become arrays.
func Put(idx bleve.Index, def *db.IndexDefinition, ref string, fields result.Fields) error {
	doc := make(map[string]any, len(fields))
	for name, values := range fields {
		typed := make([]any, 0, len(values))
		for _, v := range values {
			tv, err := typedValue(def.TypeOf(name), v)
			if err != nil {
				return fmt.Errorf("document %s field %s: %w", ref, name, err)
			}
			typed = append(typed, tv)
		}
		switch len(typed) {
		case 0:
		case 1:
			doc[fieldName(name)] = typed[0]
		default:
			doc[fieldName(name)] = typed
		}
	}
	if err := idx.Index(ref, doc); err != nil {
		return &db.Error{Op: db.OpBleveIndex, Err: err}
	}
	return nil
}

func typedValue(t db.IndexFieldType, v string) (any, error) {
	switch t {
	case db.IndexFieldNumeric:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case db.IndexFieldDate:
		return query.ParseDate(v)
	default:
		return v, nil
	}
}
