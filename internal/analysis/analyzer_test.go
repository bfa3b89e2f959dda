package analysis

import (
	"slices"
	"strings"
	"testing"
)

func TestStandard_Tokens(t *testing.T) {
	tests := []struct {
		name string
		lang string
		text string
		want []string
	}{
		{"english stopwords", "eng", "The Quick-Brown fox of the sea", []string{"quick", "brown", "fox", "sea"}},
		{"french stopwords", "fre", "La carte des sols", []string{"carte", "sols"}},
		{"german", "ger", "Karte der Böden", []string{"karte", "böden"}},
		{"unknown language keeps all", "xxx", "The map", []string{"the", "map"}},
		{"only punctuation", "eng", " -- ", nil},
		{"digits kept", "eng", "EPSG 4326", []string{"epsg", "4326"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewStandard(tt.lang).Tokens(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestPerField_Analyze(t *testing.T) {
	p := NewPerField(NewStandard("eng"), []string{"any", "title"})

	got := p.Analyze("any", `"Water Body"`)
	if !got.Quoted {
		t.Error("expected quoted value")
	}
	if got.Text() != "water body" {
		t.Errorf("expected %q, got %q", "water body", got.Text())
	}

	raw := p.Analyze("_uuid", "ABC-123 x")
	if raw.Text() != "ABC-123 x" || len(raw.Tokens) != 1 {
		t.Errorf("untokenized field should pass through, got %v", raw.Tokens)
	}

	if !p.Analyze("any", "the of").Empty() {
		t.Error("stopwords only should analyze to nothing")
	}
	if !p.Analyze("_uuid", "").Empty() {
		t.Error("empty untokenized value should analyze to nothing")
	}
}

func TestPerField_FieldOverride(t *testing.T) {
	p := NewPerField(NewStandard("eng"), []string{"title"}, WithFieldAnalyzer("title", NewStandard("fre")))
	got := p.Analyze("title", "le monde")
	if got.Text() != "monde" {
		t.Errorf("expected override analyzer, got %q", got.Text())
	}
}

func TestPerField_AnalyzeWildcard(t *testing.T) {
	p := NewPerField(NewStandard("eng"), []string{"any"})

	tests := []struct {
		field string
		text  string
		want  string
	}{
		{"any", "Hydro*Graph?y", "hydro*graph?y"},
		{"any", "*Water", "*water"},
		{"any", "wat er*", "water*"},
		{"any", "**", "**"},
		{"_uuid", "ABC*", "ABC*"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := p.AnalyzeWildcard(tt.field, tt.text)
			if got != tt.want {
				t.Errorf("AnalyzeWildcard(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
	if !HasWildcard("a?b") || HasWildcard("ab") {
		t.Error("unexpected HasWildcard result")
	}
}

func TestJapanese_Tokens(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := j.Tokens("東京都の地図。")
	if len(got) < 2 {
		t.Fatalf("expected segmented tokens, got %v", got)
	}
	for _, tok := range got {
		if strings.TrimSpace(tok) == "" || tok == "。" {
			t.Errorf("unexpected token %q", tok)
		}
	}
}

func TestRegistry_ForLanguage(t *testing.T) {
	r := NewRegistry()

	a := r.ForLanguage("fre")
	if _, ok := a.(*Standard); !ok {
		t.Fatalf("expected standard analyzer, got %T", a)
	}
	if a != r.ForLanguage("fre") {
		t.Error("expected cached analyzer")
	}
	if _, ok := r.ForLanguage("jpn").(*Japanese); !ok {
		t.Error("expected japanese analyzer for jpn")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"日本語のテキスト", "jpn"},
		{"中华人民共和国地图", "chi"},
		{"Москва карта", "rus"},
		{"지도", "kor"},
		{"hydrography", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
