package analysis

import "strings"

// HasWildcard reports whether text carries a * or ? marker.
func HasWildcard(text string) bool {
	return strings.ContainsAny(text, "*?")
}

// AnalyzeWildcard analyzes the pieces of text between wildcard markers and
// splices the markers back in their original positions. Pieces that analyze
// to several terms are joined without separators.
func (p *PerField) AnalyzeWildcard(field, text string) string {
	if !p.tokenized[field] {
		return text
	}
	var b strings.Builder
	start := 0
	for i, r := range text {
		if r != '*' && r != '?' {
			continue
		}
		b.WriteString(p.analyzePiece(field, text[start:i]))
		b.WriteRune(r)
		start = i + 1
	}
	b.WriteString(p.analyzePiece(field, text[start:]))
	return b.String()
}

func (p *PerField) analyzePiece(field, piece string) string {
	if piece == "" {
		return ""
	}
	return strings.Join(p.Analyze(field, piece).Tokens, "")
}
