// Package translation loads facet label catalogs.
package translation

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/mdsearch/internal/usecase/search"
)

// Catalog maps translator name -> language -> value -> label.
type Catalog struct {
	entries  map[string]map[string]map[string]string
	fallback string
}

// labels is one translator resolved for a language.
type labels map[string]string

// Translate implements search.Translator.
func (l labels) Translate(value string) (string, bool) {
	label, ok := l[value]
	return label, ok
}

// Parse decodes a YAML catalog. Labels missing in a language fall back
// to the fallback language when one is set.
func Parse(data []byte, fallback string) (*Catalog, error) {
	var entries map[string]map[string]map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	return &Catalog{entries: entries, fallback: fallback}, nil
}

// Load reads a YAML catalog from path. An empty path yields an empty catalog.
func Load(path, fallback string) (*Catalog, error) {
	if path == "" {
		return &Catalog{fallback: fallback}, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read translations %s: %w", path, err)
	}
	return Parse(data, fallback)
}

// Translator implements search.Translators.
func (c *Catalog) Translator(name, language string) (search.Translator, bool) {
	byLang, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	primary := byLang[language]
	fb := byLang[c.fallback]
	if len(primary) == 0 && len(fb) == 0 {
		return nil, false
	}
	if len(fb) == 0 || language == c.fallback {
		return labels(primary), true
	}

	merged := make(labels, len(fb)+len(primary))
	maps.Copy(merged, fb)
	maps.Copy(merged, primary)
	return merged, true
}

// Names returns the number of translators in the catalog.
func (c *Catalog) Names() int { return len(c.entries) }
