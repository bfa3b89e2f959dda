// Package app wires the search service and its collaborators from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/analysis"
	"github.com/kailas-cloud/mdsearch/internal/config"
	dbBleve "github.com/kailas-cloud/mdsearch/internal/db/bleve"
	dbRedis "github.com/kailas-cloud/mdsearch/internal/db/redis"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/snapshot"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
	groupsrepo "github.com/kailas-cloud/mdsearch/internal/repository/groups"
	regionrepo "github.com/kailas-cloud/mdsearch/internal/repository/region"
	logrepo "github.com/kailas-cloud/mdsearch/internal/repository/searchlog"
	"github.com/kailas-cloud/mdsearch/internal/repository/translation"
	healthuc "github.com/kailas-cloud/mdsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/mdsearch/internal/usecase/search"
	searchloguc "github.com/kailas-cloud/mdsearch/internal/usecase/searchlog"
)

// Engine is a snapshot manager that can be checked for health.
type Engine interface {
	snapshot.Manager
	Ping(ctx context.Context) error
}

// App is the composition root shared by the CLI and the embedded client.
type App struct {
	Config    config.Config
	Search    *searchuc.Service
	SearchLog *searchloguc.Logger
	Health    *healthuc.Service

	logger  *zap.Logger
	engine  Engine
	closers []func()
}

// Option configures New.
type Option func(*App)

// WithEngine uses e instead of the engine configured by the driver.
func WithEngine(e Engine) Option {
	return func(a *App) { a.engine = e }
}

// New wires every component from cfg. The caller must call Close.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	wired := false
	defer func() {
		if !wired {
			a.Close()
		}
	}()

	metrics.RegisterSearchMetrics()

	def, err := cfg.Engine.Index.Definition()
	if err != nil {
		return nil, fmt.Errorf("index definition: %w", err)
	}

	var store *dbRedis.Store
	if len(cfg.Database.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		a.closers = append(a.closers, store.Close)

		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))
	}

	eng := a.engine
	switch {
	case eng != nil:
	case cfg.Engine.Driver == config.DriverRedis:
		if store == nil {
			return nil, errors.New("redis engine needs database.addrs")
		}
		eng = dbRedis.NewManager(store, def,
			dbRedis.WithPrefix(cfg.Engine.KeyPrefix),
			dbRedis.WithFallbackLanguage(cfg.Engine.FallbackLanguage),
			dbRedis.WithWindow(cfg.Engine.Window),
		)
	case cfg.Engine.Driver == config.DriverBleve:
		m := dbBleve.NewManager(def,
			dbBleve.WithFallbackLanguage(cfg.Engine.FallbackLanguage),
			dbBleve.WithWindow(cfg.Engine.Window),
			dbBleve.WithLogger(logger.Named("bleve")),
		)
		a.closers = append(a.closers, func() {
			if err := m.Close(); err != nil {
				logger.Warn("close bleve indexes", zap.Error(err))
			}
		})
		n, err := m.LoadDir(cfg.Engine.BlevePath)
		if err != nil {
			return nil, fmt.Errorf("load bleve indexes: %w", err)
		}
		logger.Info("Loaded bleve indexes", zap.Int("languages", n), zap.String("path", cfg.Engine.BlevePath))
		eng = m
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Engine.Driver)
	}

	sink, sinkPinger, err := a.buildSink(ctx, store)
	if err != nil {
		return nil, err
	}
	a.SearchLog = searchloguc.New(sink, searchloguc.Config{
		Enabled:   cfg.SearchLog.Enabled,
		Async:     cfg.SearchLog.Async,
		QueueSize: cfg.SearchLog.QueueSize,
		Workers:   cfg.SearchLog.Workers,
		Retries:   cfg.SearchLog.Retries,
		Backoff:   time.Duration(cfg.SearchLog.RetryBackoffMs) * time.Millisecond,
	}, searchloguc.WithLogger(logger.Named("searchlog")))
	a.SearchLog.Start(ctx)

	catalog, err := translation.Load(cfg.Translations.Path, cfg.Search.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	cache, err := searchuc.NewFilterCache(cfg.FilterCache.Size)
	if err != nil {
		return nil, fmt.Errorf("filter cache: %w", err)
	}

	// Without redis, group resolution falls back to public and session groups.
	authz := groupsrepo.New(nil, "", cfg.Search.PublicGroups)
	searchOpts := []searchuc.Option{
		searchuc.WithFacets(cfg.Facets),
		searchuc.WithBoost(cfg.Boost.Name, cfg.Boost.Params),
		searchuc.WithAnalyzers(analysis.NewRegistry(analysis.WithLogger(logger.Named("analysis")))),
		searchuc.WithTranslators(catalog),
		searchuc.WithLogSubmitter(a.SearchLog),
		searchuc.WithFilterCache(cache),
		searchuc.WithLogger(logger.Named("search")),
	}
	if store != nil {
		authz = groupsrepo.New(store, cfg.Engine.KeyPrefix, cfg.Search.PublicGroups)
		searchOpts = append(searchOpts, searchuc.WithRegions(regionrepo.New(store, cfg.Engine.KeyPrefix+regionrepo.DefaultKey)))
	}
	a.Search = searchuc.New(eng, authz, cfg.Search, searchOpts...)

	var hopts []healthuc.Option
	if sinkPinger != nil {
		hopts = append(hopts, healthuc.WithComponent("search_log", sinkPinger))
	}
	a.Health = healthuc.New(eng, hopts...)
	wired = true
	return a, nil
}

// buildSink selects the search log sink. The returned pinger is nil for
// sinks without a backend.
func (a *App) buildSink(ctx context.Context, store *dbRedis.Store) (searchloguc.Sink, healthuc.Pinger, error) {
	lc := a.Config.SearchLog
	if !lc.Enabled {
		return logrepo.NewLogSink(a.logger), nil, nil
	}

	switch lc.Sink {
	case config.SinkRedis:
		if store == nil {
			return nil, nil, errors.New("redis search log sink needs database.addrs")
		}
		return logrepo.NewStreamSink(store, a.Config.Engine.KeyPrefix+lc.Stream, lc.StreamMaxLen), store, nil
	case config.SinkPostgres:
		pool, err := logrepo.OpenPool(ctx, lc.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("search log database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return logrepo.NewPostgresSink(pool, lc.Table), pool, nil
	default:
		return logrepo.NewLogSink(a.logger.Named("searchlog")), nil, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	if a.SearchLog != nil {
		a.SearchLog.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
