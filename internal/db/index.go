package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates the catalog index field kinds.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match keyword field. Tag fields can be counted as facets.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
	// IndexFieldDate is an ISO date field.
	IndexFieldDate
	// IndexFieldStored is stored for retrieval only, such as geometry WKT.
	IndexFieldStored
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldText:
		return "TEXT"
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldDate:
		return "DATE"
	case IndexFieldStored:
		return "STORED"
	default:
		return "TAG"
	}
}

// DefaultTagSeparator joins multi-valued tag fields in hash storage.
const DefaultTagSeparator = ","

// IndexField describes a single field of the catalog index.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options
	TagSeparator string
}

// IndexDefinition describes the catalog index as seen by search drivers.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField

	byName map[string]int
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// Field returns the declared field named name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	if idx.byName == nil {
		for i := range idx.Fields {
			if idx.Fields[i].Name == name {
				return idx.Fields[i], true
			}
		}
		return IndexField{}, false
	}
	i, ok := idx.byName[name]
	if !ok {
		return IndexField{}, false
	}
	return idx.Fields[i], true
}

// TypeOf returns the type of name. Undeclared fields are tags.
func (idx *IndexDefinition) TypeOf(name string) IndexFieldType {
	f, ok := idx.Field(name)
	if !ok {
		return IndexFieldTag
	}
	return f.Type
}

// Separator returns the tag separator of name.
func (idx *IndexDefinition) Separator(name string) string {
	f, ok := idx.Field(name)
	if !ok || f.Type != IndexFieldTag || f.TagSeparator == "" {
		return DefaultTagSeparator
	}
	return f.TagSeparator
}

// Has reports whether path is a declared tag field, which makes the index
// definition usable as a facet taxonomy.
func (idx *IndexDefinition) Has(path string) bool {
	f, ok := idx.Field(path)
	return ok && f.Type == IndexFieldTag
}

func (idx *IndexDefinition) index() {
	idx.byName = make(map[string]int, len(idx.Fields))
	for i := range idx.Fields {
		idx.byName[idx.Fields[i].Name] = i
	}
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
