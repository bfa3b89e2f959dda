package geo

import (
	"regexp"
	"strings"
)

// RegionPrefix marks a geometry parameter that references stored regions.
const RegionPrefix = "region:"

var idSeparator = regexp.MustCompile(`\s*,\s*`)

// RegionIDs extracts region ids from a "region:<id>[,<id>...]" reference.
// ok is false when text is not a region reference.
func RegionIDs(text string) (ids []string, ok bool) {
	if len(text) < len(RegionPrefix) || !strings.EqualFold(text[:len(RegionPrefix)], RegionPrefix) {
		return nil, false
	}
	return idSeparator.Split(text[len(RegionPrefix):], -1), true
}
