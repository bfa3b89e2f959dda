// Package groups resolves the groups a caller may search.
package groups

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

// Key layout, relative to the key prefix.
const (
	allGroupsKey    = "groups:all"
	userGroupsKeyFn = "user:%s:groups"
)

// store is the consumer interface for membership sets (ISP).
type store interface {
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements search.Authorizer over membership sets.
type Repo struct {
	store  store
	prefix string
	public []string
}

// New creates a group repository. Public groups are visible to every caller.
// Without a store only public and session groups apply.
func New(s store, prefix string, public []string) *Repo {
	return &Repo{store: s, prefix: prefix, public: slices.Clone(public)}
}

// AuthorizedGroups returns the sorted, deduplicated groups sess may search.
// Administrators get every known group; other authenticated users get
// their memberships plus the groups carried by the session.
func (r *Repo) AuthorizedGroups(ctx context.Context, sess session.Session) ([]string, error) {
	out := slices.Clone(r.public)

	switch {
	case r.store == nil:
		if sess.Authenticated {
			out = append(out, sess.Groups...)
		}
	case sess.IsAdmin():
		all, err := r.store.SMembers(ctx, r.prefix+allGroupsKey)
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		out = append(out, all...)
	case sess.Authenticated && sess.UserID != "":
		member, err := r.store.SMembers(ctx, r.prefix+fmt.Sprintf(userGroupsKeyFn, sess.UserID))
		if err != nil {
			return nil, fmt.Errorf("groups of user %s: %w", sess.UserID, err)
		}
		out = append(out, member...)
		out = append(out, sess.Groups...)
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}
