// Package region resolves stored region geometries.
package region

import (
	"context"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/geo"
)

// DefaultKey is the hash holding region WKT by id.
const DefaultKey = "regions"

// store is the consumer interface for region lookups (ISP).
type store interface {
	HGet(ctx context.Context, key, field string) (string, error)
}

// Repo implements search.RegionLookup over a hash of id -> WKT.
type Repo struct {
	store store
	key   string
}

// New creates a region repository. An empty key selects DefaultKey.
func New(s store, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{store: s, key: key}
}

// Region loads and parses the geometry stored for id.
func (r *Repo) Region(ctx context.Context, id string) (geom.T, error) {
	text, err := r.store.HGet(ctx, r.key, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("region %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load region %s: %w", id, err)
	}
	g, err := geo.ParseWKT(text)
	if err != nil {
		return nil, fmt.Errorf("region %s: %w", id, err)
	}
	return g, nil
}
