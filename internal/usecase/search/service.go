// Package search compiles catalog search requests, executes them against a
// versioned index snapshot and projects the ranked page into records.
package search

import (
	"cmp"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/analysis"
	"github.com/kailas-cloud/mdsearch/internal/config"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/record"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/boost"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/request"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/sortkey"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
)

// DefaultResultType selects the facet groups when a call names none.
const DefaultResultType = "details"

// ServiceConfig carries per-call service settings.
type ServiceConfig struct {
	ResultType string
	// GUIService tags logged searches with their origin.
	GUIService string
}

// Input is one search call.
type Input struct {
	Request *request.Request
	// Query replaces the description built from Request when set.
	// Access control is still applied.
	Query           *query.Description
	Session         session.Session
	ContextLanguage string
	LastVersion     int64
	Config          ServiceConfig
}

// Outcome is the result of one search call.
//
// Total is the engine match count when no filter applies. With a filter,
// Total counts the filtered candidates of the engine window, so it never
// exceeds the window size. Summary always counts the collected window.
type Outcome struct {
	Total    int             `json:"total"`
	From     int             `json:"from"`
	To       int             `json:"to"`
	Records  []record.Record `json:"records"`
	Summary  *facet.Summary  `json:"summary,omitempty"`
	Version  int64           `json:"version"`
	Language string          `json:"language,omitempty"`
	Query    string          `json:"query"`
}

// Service executes catalog searches.
type Service struct {
	snapshots   snapshot.Manager
	auth        Authorizer
	cfg         config.SearchConfig
	facets      map[string][]facet.Config
	boostName   string
	boostParams map[string]string
	boosts      *boost.Registry
	analyzers   *analysis.Registry
	translators Translators
	regions     RegionLookup
	log         LogSubmitter
	cache       *FilterCache
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFacets sets the summary groups per result type.
func WithFacets(f map[string][]facet.Config) Option {
	return func(s *Service) { s.facets = f }
}

// WithBoost wraps every query in the named score transform.
func WithBoost(name string, params map[string]string) Option {
	return func(s *Service) {
		s.boostName = name
		s.boostParams = params
	}
}

// WithAnalyzers sets the per-language analyzer registry.
func WithAnalyzers(r *analysis.Registry) Option {
	return func(s *Service) { s.analyzers = r }
}

// WithTranslators sets the facet label translators.
func WithTranslators(t Translators) Option {
	return func(s *Service) { s.translators = t }
}

// WithRegions sets the region lookup for region geometry references.
func WithRegions(r RegionLookup) Option {
	return func(s *Service) { s.regions = r }
}

// WithLogSubmitter enables search logging.
func WithLogSubmitter(l LogSubmitter) Option {
	return func(s *Service) { s.log = l }
}

// WithFilterCache caches filter results per snapshot version.
func WithFilterCache(c *FilterCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the clock used for log entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a search service. cfg is expected to have defaults applied.
func New(snapshots snapshot.Manager, auth Authorizer, cfg config.SearchConfig, opts ...Option) *Service {
	s := &Service{
		snapshots: snapshots,
		auth:      auth,
		cfg:       cfg,
		boosts:    boost.NewRegistry(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzers == nil {
		s.analyzers = analysis.NewRegistry(analysis.WithLogger(s.logger))
	}
	return s
}

// Search runs one search call: augment, compile, execute on a snapshot,
// aggregate facets and project the requested page.
func (s *Service) Search(ctx context.Context, in Input) (*Outcome, error) {
	start := time.Now()
	out, err := s.search(ctx, in)
	observe("search", start, err)
	return out, err
}

func (s *Service) search(ctx context.Context, in Input) (*Outcome, error) {
	p, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	from, to := s.pageBounds(p.req)
	buildSummary := p.req.Param(request.BuildSummary, "true") != "false"
	resultType := p.req.Param(request.ResultType, cmp.Or(in.Config.ResultType, DefaultResultType))
	groups := s.facets[resultType]
	m := mode.FromFast(p.req.Param(request.Fast, ""))

	params := snapshot.Params{Query: p.compiled, Filter: p.filter, Sort: p.sort, Limit: to}
	if buildSummary {
		params.Facets = facet.Requests(groups)
	}

	out := &Outcome{Language: p.language, Query: p.compiled.String()}
	err = s.withSnapshot(ctx, p.language, in.LastVersion, func(h *snapshot.Handle) error {
		ranked, err := h.Search(ctx, params)
		if err != nil {
			return fmt.Errorf("execute search: %w", err)
		}

		start, end, err := window(from, to, ranked.Total, len(ranked.Hits))
		if err != nil {
			return err
		}

		if buildSummary {
			out.Summary = s.summarize(ranked, groups, p.language)
		}
		out.Records, err = s.project(ctx, h, ranked.Hits[start:end], m, p.language)
		if err != nil {
			return fmt.Errorf("project results: %w", err)
		}
		out.Total = ranked.Total
		out.From = from
		out.To = end
		out.Version = h.Version()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.submitLog(in, p, out.Total)
	return out, nil
}

// prepared is everything computed before a snapshot is acquired.
type prepared struct {
	req      *request.Request
	language string
	compiled *query.Compiled
	sort     sortkey.Spec
	filter   filter.Filter
	spatial  string
}

// prepare augments the request and builds the query, ordering and filter.
// Errors here never reach the snapshot manager.
func (s *Service) prepare(ctx context.Context, in Input) (*prepared, error) {
	req := in.Request
	if req == nil {
		req = request.New()
	}
	if err := s.augment(ctx, req, in.Session); err != nil {
		return nil, err
	}

	language := s.determineLanguage(req, in.ContextLanguage)

	compiled, err := s.compileQuery(req, in.Query, language)
	if err != nil {
		return nil, err
	}
	sortSpec := s.buildSort(req, language)

	scope := language + "|" + compiled.String() + "|" + sortSpec.String()
	f, spatial, err := s.composeFilter(ctx, req, scope)
	if err != nil {
		return nil, err
	}

	return &prepared{
		req:      req,
		language: language,
		compiled: compiled,
		sort:     sortSpec,
		filter:   f,
		spatial:  spatial,
	}, nil
}

// withSnapshot acquires a handle, runs fn and releases the handle exactly
// once on every exit path.
func (s *Service) withSnapshot(
	ctx context.Context, language string, lastVersion int64, fn func(h *snapshot.Handle) error,
) error {
	h, err := s.snapshots.Acquire(ctx, cmp.Or(language, s.cfg.DefaultLanguage), lastVersion)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSnapshotAcquisition, err)
	}
	metrics.ActiveSnapshots.Inc()
	defer func() {
		metrics.ActiveSnapshots.Dec()
		if err := s.snapshots.Release(h); err != nil {
			s.logger.Warn("release snapshot", zap.Int64("version", h.Version()), zap.Error(err))
		}
	}()
	return fn(h)
}

// pageBounds returns the 1-based inclusive page requested by from/to.
func (s *Service) pageBounds(req *request.Request) (from, to int) {
	from = intParam(req, request.From, 1)
	if from < 1 {
		from = 1
	}
	to = intParam(req, request.To, from+s.cfg.PageSize-1)
	if to < from {
		to = from
	}
	return from, to
}

// window maps a 1-based page onto ranked hits as the half-open range
// [from-1, min(to, total)).
func window(from, to, total, ranked int) (start, end int, err error) {
	start = from - 1
	if start >= total && from > 1 {
		return 0, 0, domain.NewInsufficientResults(from, total)
	}
	end = min(to, total)
	if end > ranked {
		return 0, 0, domain.NewInsufficientResults(end, ranked)
	}
	if start > end {
		start = end
	}
	return start, end, nil
}

func (s *Service) submitLog(in Input, p *prepared, hits int) {
	if s.log == nil {
		return
	}
	s.log.Submit(logentry.Entry{
		ID:         uuid.NewString(),
		Time:       s.now(),
		Query:      p.compiled.String(),
		Hits:       hits,
		Sort:       p.sort.String(),
		SpatialWKT: p.spatial,
		Origin:     cmp.Or(in.Config.GUIService, "n"),
		Language:   p.language,
	})
}

func intParam(req *request.Request, name string, def int) int {
	v := req.Param(name, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(operation, status).Inc()
	metrics.SearchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
