package search

import (
	"context"

	"github.com/twpayne/go-geom"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

// Authorizer resolves the groups a caller may search.
type Authorizer interface {
	AuthorizedGroups(ctx context.Context, s session.Session) ([]string, error)
}

// Translator maps a facet value code to its display label.
type Translator interface {
	Translate(value string) (string, bool)
}

// Translators resolves a named translator for a language.
type Translators interface {
	Translator(name, language string) (Translator, bool)
}

// RegionLookup resolves stored region geometries by id.
// Unknown ids return domain.ErrNotFound.
type RegionLookup interface {
	Region(ctx context.Context, id string) (geom.T, error)
}

// LogSubmitter accepts search log entries. Submit never blocks.
type LogSubmitter interface {
	Submit(e logentry.Entry)
}
