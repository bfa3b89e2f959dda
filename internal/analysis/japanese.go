package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Japanese segments text with the IPA dictionary.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese loads the dictionary and creates the analyzer.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &Japanese{t: t}, nil
}

// Tokens implements Analyzer.
func (j *Japanese) Tokens(text string) []string {
	lower := cases.Lower(language.Japanese)
	var out []string
	for _, w := range j.t.Wakati(text) {
		w = strings.TrimSpace(w)
		if w == "" || !strings.ContainsFunc(w, isWordRune) {
			continue
		}
		out = append(out, lower.String(w))
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
