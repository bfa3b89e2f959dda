package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/geo"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
)

// composeFilter builds the post-ranking filter of a request and returns the
// spatial text to log with it.
func (s *Service) composeFilter(ctx context.Context, req *request.Request, scope string) (filter.Filter, string, error) {
	var f filter.Filter = filter.NewDuplicate("_id", s.cfg.DuplicateCeiling)

	spatial, logged, err := s.spatialFilter(ctx, req)
	if err != nil {
		return nil, "", err
	}
	if spatial != nil {
		f = filter.And{f, spatial}
	}
	return s.cache.Wrap(f, scope), logged, nil
}

func (s *Service) spatialFilter(ctx context.Context, req *request.Request) (*filter.Spatial, string, error) {
	text := strings.TrimSpace(req.Get(request.Geometry))
	if text == "" {
		return nil, "", nil
	}
	rel := geo.ParseRelation(req.Get(request.Relation))

	var geoms []geom.T
	if ids, ok := geo.RegionIDs(text); ok {
		var err error
		if geoms, err = s.resolveRegions(ctx, ids, rel); err != nil {
			return nil, "", err
		}
	} else {
		g, err := geo.ParseWKT(text)
		if err != nil {
			return nil, "", err
		}
		geoms = []geom.T{g}
	}

	var logged strings.Builder
	if s.cfg.LogSpatialObjects {
		for _, g := range geoms {
			logged.WriteString("geom:" + geo.WKT(g) + "\n")
		}
	}
	return filter.NewSpatial(s.cfg.GeometryField, rel, geoms), logged.String(), nil
}

// resolveRegions loads region geometries. Unknown ids are skipped; a
// within query over several regions also matches their union.
func (s *Service) resolveRegions(ctx context.Context, ids []string, rel geo.Relation) ([]geom.T, error) {
	if s.regions == nil {
		return nil, fmt.Errorf("%w: geometry references regions %v", domain.ErrRegionLookupUnavailable, ids)
	}
	geoms := make([]geom.T, 0, len(ids)+1)
	for _, id := range ids {
		if id == "" {
			continue
		}
		g, err := s.regions.Region(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("unknown region skipped", zap.String("region", id))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load region %s: %w", id, err)
		}
		geoms = append(geoms, g)
	}

	if rel == geo.Within && len(ids) > 1 && len(geoms) > 1 {
		u, err := geo.Union(geoms)
		if err != nil {
			s.logger.Warn("region union skipped", zap.Strings("regions", ids), zap.Error(err))
			return geoms, nil
		}
		geoms = append([]geom.T{u}, geoms...)
	}
	return geoms, nil
}
