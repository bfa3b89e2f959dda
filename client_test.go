package mdsearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/mdsearch/internal/app"
	"github.com/kailas-cloud/mdsearch/internal/config"
	dbBleve "github.com/kailas-cloud/mdsearch/internal/db/bleve"
	"github.com/kailas-cloud/mdsearch/internal/domain"
	"github.com/kailas-cloud/mdsearch/internal/domain/search/result"
	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

func withEngine(e app.Engine) Option {
	return func(c *clientConfig) { c.appOpts = append(c.appOpts, app.WithEngine(e)) }
}

func testConfig() config.Config {
	cfg := config.Config{
		HTTP: config.HTTPConfig{Port: 8090},
		Engine: config.EngineConfig{
			Driver: config.DriverBleve,
			Index: config.IndexConfig{
				Name:   "catalog",
				Text:   []string{"any", "title"},
				Tag:    []string{"_id", "_uuid", "_locale", "_op0", "_owner", "_groupOwner", "keyword"},
				Date:   []string{"_changeDate"},
				Stored: []string{"_title"},
			},
		},
		Search: config.SearchConfig{
			TokenizedFields: []string{"any", "title"},
			PublicGroups:    []string{"1"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

var testDocs = map[string]result.Fields{
	"md:1": {"_id": {"1"}, "_uuid": {"u1"}, "_locale": {"eng"}, "_op0": {"1"}, "any": {"water rivers"}, "keyword": {"river"}, "_changeDate": {"2020-01-01T00:00:00"}},
	"md:2": {"_id": {"2"}, "_uuid": {"u2"}, "_locale": {"eng"}, "_op0": {"1"}, "any": {"lake water"}, "keyword": {"lake"}, "_changeDate": {"2022-06-01T00:00:00"}},
	"md:3": {"_id": {"3"}, "_uuid": {"u3"}, "_locale": {"eng"}, "_op0": {"9"}, "any": {"private water"}},
	"md:4": {"_id": {"4"}, "_uuid": {"u4"}, "_locale": {"fre"}, "_op0": {"1"}, "any": {"eau water"}},
	"md:5": {"_id": {"5"}, "_uuid": {"u5"}, "_locale": {"eng"}, "_op0": {"1"}, "any": {"mountain peaks"}},
}

func fill(t *testing.T, idx bleve.Index, cfg config.Config) {
	t.Helper()
	def, err := cfg.Engine.Index.Definition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for ref, fields := range testDocs {
		if err := dbBleve.Put(idx, def, ref, fields); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := testConfig()
	def, err := cfg.Engine.Index.Definition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, err := dbBleve.NewMemIndex(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fill(t, idx, cfg)

	m := dbBleve.NewManager(def)
	m.Publish("eng", idx)
	t.Cleanup(func() { _ = m.Close() })

	c, err := open(context.Background(), cfg, withEngine(m))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func ids(out *Outcome) []string {
	got := make([]string, len(out.Records))
	for i, r := range out.Records {
		got[i] = r.ID()
	}
	slices.Sort(got)
	return got
}

// --- Search tests ---

func TestSearch_AnonymousSeesPublicRecordsInItsLanguage(t *testing.T) {
	c := newTestClient(t)

	out, err := c.Search().Any("water").Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 {
		t.Errorf("expected 2 hits, got %d", out.Total)
	}
	if got := ids(out); !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("expected records [1 2], got %v", got)
	}
	if out.Language != "eng" {
		t.Errorf("expected default language eng, got %q", out.Language)
	}
}

func TestSearch_AdminSeesPrivateRecords(t *testing.T) {
	c := newTestClient(t)
	admin := session.Session{UserID: "1", Profile: session.Administrator, Authenticated: true}

	out, err := c.Search().Any("water").As(admin).Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(out); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("expected records [1 2 3], got %v", got)
	}
}

func TestSearch_UnauthorizedGroup(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Search().Any("water").Groups("9").Do(context.Background())
	if !errors.Is(err, domain.ErrUnauthorizedScope) {
		t.Errorf("expected ErrUnauthorizedScope, got %v", err)
	}
}

func TestSearch_Paging(t *testing.T) {
	c := newTestClient(t)

	out, err := c.Search().Any("water").Page(2, 2).WithoutSummary().Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 || len(out.Records) != 1 {
		t.Errorf("expected second record of 2, got total=%d records=%d", out.Total, len(out.Records))
	}
	if out.Summary != nil {
		t.Error("expected no summary")
	}
}

func TestSearch_ChangedBetween(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name     string
		from, to string
		want     []string
	}{
		{"closed", "2019-01-01", "2021-01-01", []string{"1"}},
		{"open upper", "2021-01-01", "", []string{"2"}},
		{"open lower", "", "2021-01-01", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Search().Any("water").ChangedBetween(tt.from, tt.to).Do(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(out); !slices.Equal(got, tt.want) {
				t.Errorf("expected records %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSearch_InvalidToken(t *testing.T) {
	c := newTestClient(t)

	if _, err := c.Search().Token("not.a.token").Do(context.Background()); err == nil {
		t.Fatal("expected session error")
	}
}

func TestSearch_UUIDs(t *testing.T) {
	c := newTestClient(t)

	got, err := c.Search().Any("water").UUIDs(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slices.Sort(got)
	if !slices.Equal(got, []string{"u1", "u2"}) {
		t.Errorf("expected [u1 u2], got %v", got)
	}
}

// --- Lookup tests ---

func TestLookup(t *testing.T) {
	c := newTestClient(t)

	f, err := c.Lookup(context.Background(), "u2", "eng", "_id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.First("_id") != "2" {
		t.Errorf("expected _id 2, got %v", f)
	}

	if _, err := c.Lookup(context.Background(), "missing", "eng"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReady(t *testing.T) {
	if !newTestClient(t).Ready(context.Background()) {
		t.Error("expected ready client")
	}
}

// --- Open tests ---

func TestOpen_BleveDir(t *testing.T) {
	cfg := testConfig()
	def, err := cfg.Engine.Index.Definition()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := t.TempDir()
	idx, err := bleve.New(filepath.Join(root, "eng"), dbBleve.NewMapping(def))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fill(t, idx, cfg)
	if err := idx.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "test.yaml")
	yaml := `
http:
  port: 8090
engine:
  driver: bleve
  bleve_path: /nonexistent
  index:
    name: catalog
    text: [any, title]
    tag: [_id, _uuid, _locale, _op0, _owner, _groupOwner, keyword]
    date: [_changeDate]
    stored: [_title]
search:
  tokenized_fields: [any, title]
  public_groups: ["1"]
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := Open(context.Background(), cfgPath, WithBleveDir(root))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	out, err := c.Search().Any("water").Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 2 {
		t.Errorf("expected 2 hits, got %d", out.Total)
	}
}

func TestOpen_MissingConfig(t *testing.T) {
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
