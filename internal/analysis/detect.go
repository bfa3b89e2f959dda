package analysis

import "unicode"

// scripts maps a writing system to the catalog language it identifies.
// Latin text is ambiguous and left undetected.
var scripts = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Hiragana, "jpn"},
	{unicode.Katakana, "jpn"},
	{unicode.Hangul, "kor"},
	{unicode.Han, "chi"},
	{unicode.Cyrillic, "rus"},
	{unicode.Arabic, "ara"},
	{unicode.Greek, "gre"},
	{unicode.Hebrew, "heb"},
	{unicode.Thai, "tha"},
}

// DetectLanguage guesses the catalog language of free text from the script
// of its letters. Kana wins over Han so mixed Japanese text is not taken
// for Chinese. It returns "" when no script identifies a language.
func DetectLanguage(text string) string {
	counts := make([]int, len(scripts))
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	// Kana entries come first.
	if counts[0] > 0 || counts[1] > 0 {
		return "jpn"
	}
	best, bestCount := "", 0
	for i, c := range counts {
		if c > bestCount {
			best, bestCount = scripts[i].code, c
		}
	}
	return best
}
