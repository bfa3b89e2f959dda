package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/mdsearch/internal/db"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/boost"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/query"
)

// Config holds the mdsearch configuration.
type Config struct {
	HTTP         HTTPConfig                `yaml:"http"`
	Database     DatabaseConfig            `yaml:"database"`
	Engine       EngineConfig              `yaml:"engine"`
	Search       SearchConfig              `yaml:"search"`
	Facets       map[string][]facet.Config `yaml:"facets"` // by result type
	Boost        BoostConfig               `yaml:"boost"`
	SearchLog    SearchLogConfig           `yaml:"search_log"`
	Translations TranslationsConfig        `yaml:"translations"`
	Auth         AuthConfig                `yaml:"auth"`
	FilterCache  FilterCacheConfig         `yaml:"filter_cache"`
	Logging      LoggingConfig             `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds session token and admin api key settings.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret"`
	Issuer    string   `yaml:"issuer"`
	Audience  string   `yaml:"audience"`
	APIKeys   []string `yaml:"api_keys"` // guards /metrics; empty disables
}

// HTTPConfig holds admin HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Engine drivers.
const (
	DriverRedis = "redis"
	DriverBleve = "bleve"
)

// EngineConfig selects and configures the index engine.
type EngineConfig struct {
	Driver           string      `yaml:"driver"` // redis, bleve (default: redis)
	KeyPrefix        string      `yaml:"key_prefix"`
	BlevePath        string      `yaml:"bleve_path"`
	Window           int         `yaml:"window"`
	FallbackLanguage string      `yaml:"fallback_language"`
	Index            IndexConfig `yaml:"index"`
}

// IndexConfig declares the catalog index fields by type.
type IndexConfig struct {
	Name          string            `yaml:"name"`
	Prefixes      []string          `yaml:"prefixes"`
	Text          []string          `yaml:"text"`
	Tag           []string          `yaml:"tag"`
	Numeric       []string          `yaml:"numeric"`
	Date          []string          `yaml:"date"`
	Stored        []string          `yaml:"stored"`
	TagSeparators map[string]string `yaml:"tag_separators"`
}

// Definition builds the index definition.
func (c IndexConfig) Definition() (*db.IndexDefinition, error) {
	b := db.NewIndex(c.Name).
		Prefix(c.Prefixes...).
		Text(c.Text...).
		Numeric(c.Numeric...).
		Date(c.Date...).
		Stored(c.Stored...)
	for _, name := range c.Tag {
		if sep, ok := c.TagSeparators[name]; ok {
			b = b.TagWithSeparator(name, sep)
		} else {
			b = b.Tag(name)
		}
	}
	return b.Build()
}

// Locale restriction modes.
const (
	LocaleOff       = "off"
	LocaleOnly      = "only"
	LocaleWhitelist = "whitelist"
)

// DumpField maps a stored index field to its name in dumped records.
type DumpField struct {
	Field string `yaml:"field"`
	Name  string `yaml:"name"`
}

// SearchConfig holds query compilation and execution settings.
type SearchConfig struct {
	DefaultLanguage         string            `yaml:"default_language"`
	RequestedLanguageOnTop  bool              `yaml:"requested_language_on_top"`
	IgnoreRequestedLanguage bool              `yaml:"ignore_requested_language"`
	AutoDetectLanguage      bool              `yaml:"autodetect_language"`
	LocaleRestriction       string            `yaml:"locale_restriction"` // off, only, whitelist
	LocaleWhitelist         []string          `yaml:"locale_whitelist"`
	TokenizedFields         []string          `yaml:"tokenized_fields"`
	NumericFields           map[string]string `yaml:"numeric_fields"` // field -> int, long, float, double
	MultilingualFields      []string          `yaml:"multilingual_fields"`
	DumpFields              []DumpField       `yaml:"dump_fields"`
	TrackDocScores          bool              `yaml:"track_doc_scores"`
	MaxClauseCount          int               `yaml:"max_clause_count"`
	DuplicateCeiling        int               `yaml:"duplicate_ceiling"`
	PageSize                int               `yaml:"page_size"`
	MaxHits                 int               `yaml:"max_hits"`
	PublicGroups            []string          `yaml:"public_groups"`
	GeometryField           string            `yaml:"geometry_field"`
	LogSpatialObjects       bool              `yaml:"log_spatial_objects"`
}

// NumericTypes returns the declared numeric field types.
func (c SearchConfig) NumericTypes() map[string]query.NumericType {
	out := make(map[string]query.NumericType, len(c.NumericFields))
	for f, t := range c.NumericFields {
		out[f] = query.NumericType(t)
	}
	return out
}

// BoostConfig names the score transform wrapped around every query.
type BoostConfig struct {
	Name   string            `yaml:"name"`
	Params map[string]string `yaml:"params"`
}

// Search log sinks.
const (
	SinkRedis    = "redis"
	SinkPostgres = "postgres"
	SinkLog      = "log"
)

// SearchLogConfig holds query logging settings.
type SearchLogConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Async          bool   `yaml:"async"`
	QueueSize      int    `yaml:"queue_size"`
	Workers        int    `yaml:"workers"`
	Retries        int    `yaml:"retries"`
	RetryBackoffMs int    `yaml:"retry_backoff_ms"`
	Sink           string `yaml:"sink"` // redis, postgres, log
	Stream         string `yaml:"stream"`
	StreamMaxLen   int64  `yaml:"stream_max_len"`
	PostgresDSN    string `yaml:"postgres_dsn"`
	Table          string `yaml:"table"`
	GUIService     string `yaml:"gui_service"`
}

// TranslationsConfig locates the facet label catalog.
type TranslationsConfig struct {
	Path string `yaml:"path"`
}

// FilterCacheConfig sizes the filter result cache.
type FilterCacheConfig struct {
	Size int `yaml:"size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Engine.Driver == "" {
		c.Engine.Driver = DriverRedis
	}
	if c.Engine.Window <= 0 {
		c.Engine.Window = 10000
	}
	if c.Engine.Index.Name == "" {
		c.Engine.Index.Name = "catalog"
	}

	s := &c.Search
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = "eng"
	}
	if s.LocaleRestriction == "" {
		s.LocaleRestriction = LocaleOnly
	}
	if s.MaxClauseCount <= 0 {
		s.MaxClauseCount = 16384
	}
	if s.DuplicateCeiling <= 0 {
		s.DuplicateCeiling = 1_000_000
	}
	if s.PageSize <= 0 {
		s.PageSize = 10
	}
	if s.MaxHits <= 0 {
		s.MaxHits = 1000
	}
	if s.GeometryField == "" {
		s.GeometryField = "_geom"
	}

	for rt := range c.Facets {
		for i := range c.Facets[rt] {
			c.Facets[rt][i].Normalize()
		}
	}

	l := &c.SearchLog
	if l.QueueSize <= 0 {
		l.QueueSize = 1024
	}
	if l.Workers <= 0 {
		l.Workers = 2
	}
	if l.Retries < 0 {
		l.Retries = 0
	}
	if l.RetryBackoffMs <= 0 {
		l.RetryBackoffMs = 100
	}
	if l.Sink == "" {
		l.Sink = SinkLog
	}
	if l.Stream == "" {
		l.Stream = "mdsearch:searchlog"
	}
	if l.StreamMaxLen <= 0 {
		l.StreamMaxLen = 100000
	}
	if l.Table == "" {
		l.Table = "search_log"
	}
	if l.GUIService == "" {
		l.GUIService = "n"
	}

	if c.FilterCache.Size <= 0 {
		c.FilterCache.Size = 256
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Engine.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case DriverBleve:
		if c.Engine.BlevePath == "" {
			return fmt.Errorf("engine.bleve_path is required for the bleve driver")
		}
	default:
		return fmt.Errorf("engine.driver must be %q or %q, got %q", DriverRedis, DriverBleve, c.Engine.Driver)
	}
	if _, err := c.Engine.Index.Definition(); err != nil {
		return fmt.Errorf("engine.index: %w", err)
	}

	switch c.Search.LocaleRestriction {
	case LocaleOff, LocaleOnly, LocaleWhitelist:
	default:
		return fmt.Errorf("search.locale_restriction must be off, only or whitelist, got %q", c.Search.LocaleRestriction)
	}
	for f, t := range c.Search.NumericFields {
		if !query.NumericType(t).IsValid() {
			return fmt.Errorf("search.numeric_fields.%s: unknown type %q", f, t)
		}
	}

	for rt, groups := range c.Facets {
		for _, g := range groups {
			if err := g.Validate(); err != nil {
				return fmt.Errorf("facets.%s: %w", rt, err)
			}
		}
	}

	if c.Boost.Name != "" {
		if err := boost.Validate(c.Boost.Name, c.Boost.Params); err != nil {
			return fmt.Errorf("boost: %w", err)
		}
	}

	if c.SearchLog.Enabled {
		switch c.SearchLog.Sink {
		case SinkLog:
		case SinkRedis:
			if len(c.Database.Addrs) == 0 {
				return fmt.Errorf("database.addrs is required for the redis search log sink")
			}
		case SinkPostgres:
			if c.SearchLog.PostgresDSN == "" {
				return fmt.Errorf("search_log.postgres_dsn is required for the postgres sink")
			}
		default:
			return fmt.Errorf("search_log.sink must be redis, postgres or log, got %q", c.SearchLog.Sink)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
