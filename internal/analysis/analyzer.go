// Package analysis splits query text into index terms the same way the
// catalog index analyzes stored text.
package analysis

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/domain/lang"
)

// Analyzer turns text into index terms.
type Analyzer interface {
	Tokens(text string) []string
}

// Analyzed is the outcome of analyzing one query value.
type Analyzed struct {
	Tokens []string
	// Quoted is set when the raw value was wrapped in double quotes.
	Quoted bool
}

// Empty reports whether analysis produced no terms.
func (a Analyzed) Empty() bool { return len(a.Tokens) == 0 }

// Text joins the tokens with single spaces.
func (a Analyzed) Text() string { return strings.Join(a.Tokens, " ") }

// PerField applies an analyzer to tokenized fields and passes other field
// values through unchanged.
type PerField struct {
	def       Analyzer
	fields    map[string]Analyzer
	tokenized map[string]bool
}

// PerFieldOption configures a PerField analyzer.
type PerFieldOption func(*PerField)

// WithFieldAnalyzer overrides the analyzer of one field.
func WithFieldAnalyzer(field string, a Analyzer) PerFieldOption {
	return func(p *PerField) { p.fields[field] = a }
}

// NewPerField creates a per-field analyzer over the tokenized field set.
func NewPerField(def Analyzer, tokenized []string, opts ...PerFieldOption) *PerField {
	p := &PerField{
		def:       def,
		fields:    make(map[string]Analyzer),
		tokenized: make(map[string]bool, len(tokenized)),
	}
	for _, f := range tokenized {
		p.tokenized[f] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tokenized reports whether field values are analyzed.
func (p *PerField) Tokenized(field string) bool { return p.tokenized[field] }

// Analyze returns the terms of text for field. Untokenized fields yield
// the raw text as a single term, or nothing when it is empty.
func (p *PerField) Analyze(field, text string) Analyzed {
	quoted := len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`)
	if !p.tokenized[field] {
		if text == "" {
			return Analyzed{Quoted: quoted}
		}
		return Analyzed{Tokens: []string{text}, Quoted: quoted}
	}
	a := p.def
	if fa, ok := p.fields[field]; ok {
		a = fa
	}
	return Analyzed{Tokens: a.Tokens(text), Quoted: quoted}
}

// Registry hands out analyzers per catalog language.
type Registry struct {
	logger   *zap.Logger
	japanese func() (*Japanese, error)

	mu       sync.Mutex
	standard map[string]*Standard
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry. The Japanese dictionary loads on first use.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:   zap.NewNop(),
		japanese: sync.OnceValues(NewJapanese),
		standard: make(map[string]*Standard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForLanguage returns the analyzer for a catalog language code.
func (r *Registry) ForLanguage(code string) Analyzer {
	if lang.Base(code) == "ja" {
		j, err := r.japanese()
		if err == nil {
			return j
		}
		r.logger.Warn("japanese analyzer unavailable, using standard", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.standard[code]
	if !ok {
		s = NewStandard(code)
		r.standard[code] = s
	}
	return s
}
