// Package mdsearch embeds the catalog search engine in a Go program.
//
// A Client is opened from the same YAML configuration the mdsearch command
// reads, and searches are assembled with a fluent builder:
//
//	c, err := mdsearch.Open(ctx, "config/local.yaml")
//	...
//	out, err := c.Search().Any("water").Where("topicCat", "inlandWaters").Page(1, 20).Do(ctx)
package mdsearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/app"
	"github.com/kailas-cloud/mdsearch/internal/auth"
	"github.com/kailas-cloud/mdsearch/internal/config"
	"github.com/kailas-cloud/mdsearch/internal/domain/record"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
	searchuc "github.com/kailas-cloud/mdsearch/internal/usecase/search"
)

// Public views of search results.
type (
	Outcome       = searchuc.Outcome
	Record        = record.Record
	Summary       = facet.Summary
	Fields        = result.Fields
	TermFrequency = searchuc.TermFrequency
	Session       = session.Session
)

// Client is the mdsearch SDK entry point.
type Client struct {
	app      *app.App
	sessions *auth.Verifier
}

type clientConfig struct {
	logger   *zap.Logger
	addrs    []string
	bleveDir string
	appOpts  []app.Option
}

// Option configures a Client.
type Option func(*clientConfig)

// WithLogger sets the logger (default: no logging).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithRedis selects the redis engine at addrs.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithBleveDir selects the embedded engine over the indexes under dir.
// Each subdirectory holds the index of the language it is named after.
func WithBleveDir(dir string) Option {
	return func(c *clientConfig) { c.bleveDir = dir }
}

// Open loads configPath and connects to the configured engine.
func Open(ctx context.Context, configPath string, opts ...Option) (*Client, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("mdsearch: %w", err)
	}
	return open(ctx, cfg, opts...)
}

func open(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o(cc)
	}
	if len(cc.addrs) > 0 {
		cfg.Engine.Driver = config.DriverRedis
		cfg.Database.Addrs = cc.addrs
	}
	if cc.bleveDir != "" {
		cfg.Engine.Driver = config.DriverBleve
		cfg.Engine.BlevePath = cc.bleveDir
	}

	a, err := app.New(ctx, cfg, cc.logger, cc.appOpts...)
	if err != nil {
		return nil, fmt.Errorf("mdsearch: %w", err)
	}
	return &Client{
		app:      a,
		sessions: auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience),
	}, nil
}

// Close flushes the search log and releases all resources.
func (c *Client) Close() {
	c.app.Close()
}

// Ready reports whether the index engine answers.
func (c *Client) Ready(ctx context.Context) bool {
	return c.app.Health.Ready(ctx)
}

// Search returns a fluent search builder.
func (c *Client) Search() *SearchBuilder {
	return newSearchBuilder(c)
}

// Lookup returns the stored fields of the record whose uuid is id, preferring
// its version in language. Access control is not applied.
func (c *Client) Lookup(ctx context.Context, id, language string, fields ...string) (Fields, error) {
	found, err := c.app.Search.Lookup(ctx, searchuc.LookupInput{
		Value:    id,
		Language: language,
		Fields:   fields,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	return found[0], nil
}
