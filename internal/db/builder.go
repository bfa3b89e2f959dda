package db

import "strings"

// IndexBuilder is a fluent builder for catalog index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds NUMERIC fields.
func (b *IndexBuilder) Numeric(names ...string) *IndexBuilder {
	return b.add(IndexFieldNumeric, names)
}

// Tag adds TAG fields with the default separator.
func (b *IndexBuilder) Tag(names ...string) *IndexBuilder {
	return b.add(IndexFieldTag, names)
}

// TagWithSeparator adds a TAG field with a custom separator.
func (b *IndexBuilder) TagWithSeparator(name, separator string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:         name,
		Type:         IndexFieldTag,
		TagSeparator: separator,
	})
	return b
}

// Text adds TEXT fields.
func (b *IndexBuilder) Text(names ...string) *IndexBuilder {
	return b.add(IndexFieldText, names)
}

// Date adds DATE fields.
func (b *IndexBuilder) Date(names ...string) *IndexBuilder {
	return b.add(IndexFieldDate, names)
}

// Stored adds retrieval-only fields.
func (b *IndexBuilder) Stored(names ...string) *IndexBuilder {
	return b.add(IndexFieldStored, names)
}

func (b *IndexBuilder) add(t IndexFieldType, names []string) *IndexBuilder {
	for _, n := range names {
		b.def.Fields = append(b.def.Fields, IndexField{Name: n, Type: t})
	}
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	def.index()
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldText:
			parts = append(parts, "TEXT")
		case IndexFieldNumeric, IndexFieldDate:
			parts = append(parts, "NUMERIC", "SORTABLE")
		case IndexFieldStored:
			parts = append(parts, "TEXT", "NOINDEX")
		default:
			parts = append(parts, "TAG")
			if f.TagSeparator != "" && f.TagSeparator != DefaultTagSeparator {
				parts = append(parts, "SEPARATOR", f.TagSeparator)
			}
		}
	}
	return strings.Join(parts, " ")
}
