package search

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

// augment enforces the caller's scope on req in place. Caller-supplied
// security fields never survive it, and an explicit group restriction is
// never widened.
func (s *Service) augment(ctx context.Context, req *request.Request, sess session.Session) error {
	for _, f := range request.SecurityFields {
		req.Del(f)
	}

	groups, err := s.auth.AuthorizedGroups(ctx, sess)
	if err != nil {
		return fmt.Errorf("authorized groups: %w", err)
	}

	requested := nonBlank(req.Values(request.Group))
	if !sess.IsAdmin() {
		for _, g := range requested {
			if !slices.Contains(groups, g) {
				return &domain.UnauthorizedScopeError{Group: g}
			}
		}
	}

	if len(requested) == 0 {
		req.Set(request.Group, groups...)
		if id, ok := sess.OwnerID(); ok {
			req.Set(request.Owner, id)
		}
		switch {
		case sess.IsAdmin():
			req.Set(request.IsAdmin, "true")
		case sess.IsReviewer():
			req.Set(request.IsReviewer, "true")
		}
	}

	return normalizeDates(req)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
