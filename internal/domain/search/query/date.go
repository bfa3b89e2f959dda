package query

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/mdsearch/internal/domain"
)

// DateLayout is the canonical form of date range bounds.
const DateLayout = "2006-01-02T15:04:05"

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02"}

// ParseDate parses a date range bound in canonical or date-only form.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
}
