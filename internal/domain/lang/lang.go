// Package lang maps the catalog's ISO 639-2 language codes to BCP 47 tags.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the fallback catalog language.
const Default = "eng"

// bibliographic ISO 639-2/B codes that language.Parse does not know.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

// Tag converts a catalog language code to a language tag.
// Unknown codes map to language.Und.
func Tag(code string) language.Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Und
	}
	if t, ok := bibliographic[code]; ok {
		code = t
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}

// Base returns the two-letter base language of a catalog code, or "" if unknown.
func Base(code string) string {
	tag := Tag(code)
	if tag == language.Und {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
