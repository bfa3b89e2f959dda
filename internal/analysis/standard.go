package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/mdsearch/internal/domain/lang"
)

var stopwords = map[string][]string{
	"en": {
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if", "in", "into",
		"is", "it", "no", "not", "of", "on", "or", "such", "that", "the", "their", "then",
		"there", "these", "they", "this", "to", "was", "will", "with",
	},
	"fr": {
		"a", "au", "aux", "avec", "ce", "ces", "dans", "de", "des", "du", "elle", "en", "et",
		"il", "ils", "la", "le", "les", "leur", "mais", "ou", "par", "pour", "qui", "que",
		"sa", "se", "ses", "son", "sur", "un", "une",
	},
	"de": {
		"am", "an", "auf", "aus", "bei", "das", "dem", "den", "der", "des", "die", "ein",
		"eine", "einer", "es", "für", "im", "in", "ist", "mit", "nicht", "oder", "sie",
		"und", "von", "zu", "zum", "zur",
	},
}

// Standard splits on non-alphanumeric runes, lowercases and drops the
// stopwords of its language.
type Standard struct {
	lang string
	stop map[string]bool
}

// NewStandard creates a standard analyzer for a catalog language code.
func NewStandard(code string) *Standard {
	s := &Standard{lang: code, stop: make(map[string]bool)}
	for _, w := range stopwords[lang.Base(code)] {
		s.stop[w] = true
	}
	return s
}

// Tokens implements Analyzer.
func (s *Standard) Tokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return nil
	}
	lower := cases.Lower(lang.Tag(s.lang))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := lower.String(f)
		if s.stop[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}
