package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
)

// Open date bounds.
const (
	minDate = "0000-01-01"
	maxDate = "9999-01-01"
)

// normalizeDates rewrites every date pair to canonical bounds. A pair with
// both sides blank is removed; one blank side is opened to the far past or
// future. Running it twice changes nothing.
func normalizeDates(req *request.Request) error {
	for _, p := range request.DatePairs {
		from := strings.TrimSpace(req.Get(p.From))
		to := strings.TrimSpace(req.Get(p.To))
		if from == "" && to == "" {
			req.Del(p.From)
			req.Del(p.To)
			continue
		}
		if from == "" {
			from = minDate
		}
		if to == "" {
			to = maxDate
		}

		f, err := canonicalDate(from)
		if err != nil {
			return fmt.Errorf("%s: %w", p.From, err)
		}
		t, err := canonicalDate(to)
		if err != nil {
			return fmt.Errorf("%s: %w", p.To, err)
		}
		req.Set(p.From, f)
		req.Set(p.To, t)
	}
	return nil
}

// canonicalDate reformats s to query.DateLayout. Inputs outside the ISO
// forms go through a lenient parser.
func canonicalDate(s string) (string, error) {
	if t, err := query.ParseDate(s); err == nil {
		return t.Format(query.DateLayout), nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return t.Format(query.DateLayout), nil
}
