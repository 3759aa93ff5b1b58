package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/rerank"
	"github.com/rushteam/bookrec/store"
)

// validFile 返回一个可通过校验的最小配置（文件数据源、关闭 LLM）。
func validFile(t *testing.T) string {
	t.Helper()
	return writeConfig(t, `
source:
  kind: file
  file:
    path: testdata/library.yaml
llm:
  enabled: false
`)
}

func nodeConfig(typ string, cfg map[string]any) pipeline.NodeConfig {
	return pipeline.NodeConfig{Type: typ, Config: cfg}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookrec.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 5001 {
		t.Errorf("Server.Port = %d, want 5001", cfg.Server.Port)
	}
	if cfg.Index.MaxFeatures != 5000 {
		t.Errorf("Index.MaxFeatures = %d, want 5000", cfg.Index.MaxFeatures)
	}
	if cfg.Recommend.DefaultN != 5 {
		t.Errorf("Recommend.DefaultN = %d, want 5", cfg.Recommend.DefaultN)
	}
	if cfg.LLM.Model != "gpt-4" || cfg.LLM.MaxTokens != 150 || cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM defaults = %+v", cfg.LLM)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Source.Mongo.Database != "smartlibrary" {
		t.Errorf("Mongo.Database = %q", cfg.Source.Mongo.Database)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
source:
  kind: sqlite
  sqlite:
    path: /tmp/books.db
    migrate: true
recommend:
  default_n: 3
  method_timeout: 2s
  exclude:
    - 'item.genre == "Horror"'
  post:
    - type: rerank.diversity
      config:
        field: genre
        max_per_value: 2
llm:
  enabled: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("defaults should survive a partial file, Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Source.Kind != "sqlite" || cfg.Source.SQLite.Path != "/tmp/books.db" || !cfg.Source.SQLite.Migrate {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Recommend.DefaultN != 3 || cfg.Recommend.MethodTimeout != 2*time.Second {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if len(cfg.Recommend.Exclude) != 1 {
		t.Errorf("Exclude = %v", cfg.Recommend.Exclude)
	}
	if len(cfg.Recommend.Post) != 1 || cfg.Recommend.Post[0].Type != "rerank.diversity" {
		t.Fatalf("Post = %+v", cfg.Recommend.Post)
	}

	nodes, err := cfg.BuildPost(nil)
	if err != nil {
		t.Fatalf("BuildPost() error = %v", err)
	}
	d, ok := nodes[0].(*rerank.Diversity)
	if !ok || d.Field != "genre" || d.MaxPerValue != 2 {
		t.Errorf("post node = %#v", nodes[0])
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("DATABASE_NAME", "library")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("AI_SERVICE_PORT", "6001")
	t.Setenv("CACHE_TTL", "600")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BOOKREC_CACHE_BACKEND", "redis")
	t.Setenv("BOOKREC_CACHE_REDIS_ADDR", "redis:6379")
	t.Setenv("BOOKREC_RECOMMEND_EXCLUDE", `item.genre == "Horror"; item.author == "Anon"`)
	t.Setenv("BOOKREC_LLM_BREAKER_FAILURE_THRESHOLD", "9")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Kind != "mongo" || cfg.Source.Mongo.URI != "mongodb://db.internal:27017" || cfg.Source.Mongo.Database != "library" {
		t.Errorf("Source.Mongo = %+v", cfg.Source.Mongo)
	}
	if cfg.LLM.APIKey != "sk-test" || cfg.LLM.Temperature != 0.2 {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Server.Port != 6001 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v, want 10m (plain seconds)", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if len(cfg.Recommend.Exclude) != 2 || cfg.Recommend.Exclude[1] != `item.author == "Anon"` {
		t.Errorf("Exclude = %q", cfg.Recommend.Exclude)
	}
	if cfg.LLM.Breaker.FailureThreshold != 9 {
		t.Errorf("Breaker.FailureThreshold = %d", cfg.LLM.Breaker.FailureThreshold)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("TFIDF_MAX_FEATURES", "42")
	cfg, err := Load(validFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Index.MaxFeatures != 42 {
		t.Errorf("Index.MaxFeatures = %d, want 42", cfg.Index.MaxFeatures)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !core.IsInvalidInput(err) {
		t.Fatalf("want INVALID_INPUT, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown source kind", func(c *Config) { c.Source.Kind = "postgres" }, "source.kind"},
		{"mongo without uri", func(c *Config) { c.Source.Kind = "mongo" }, "source.mongo.uri"},
		{"sqlite without path", func(c *Config) { c.Source.Kind = "sqlite"; c.Source.SQLite.Path = "" }, "source.sqlite.path"},
		{"file without path", func(c *Config) { c.Source.File.Path = "" }, "source.file.path"},
		{"default_n zero", func(c *Config) { c.Recommend.DefaultN = 0 }, "default_n"},
		{"default_n above max", func(c *Config) { c.Recommend.DefaultN = 200 }, "must not exceed"},
		{"llm without key", func(c *Config) { c.LLM.Enabled = true }, "llm.api_key"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "level"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.Redis.Addr = "" }, "cache.redis.addr"},
		{"post without type", func(c *Config) { c.Recommend.Post = append(c.Recommend.Post, nodeConfig("", nil)) }, "type is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Source.Kind = "file"
			cfg.Source.File.Path = "library.yaml"
			cfg.LLM.Enabled = false
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("want INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestPostFactory(t *testing.T) {
	cfg := Default()
	cfg.Recommend.Post = append(cfg.Recommend.Post,
		nodeConfig("filter.blacklist", map[string]any{"ids": []any{"b1", 2}}),
		nodeConfig("filter.expr", map[string]any{"expr": `item.genre == "Horror"`}),
		nodeConfig("rerank.topn", map[string]any{"n": 3}),
	)
	nodes, err := cfg.BuildPost(nil)
	if err != nil {
		t.Fatalf("BuildPost() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	fn, ok := nodes[0].(*filter.FilterNode)
	if !ok {
		t.Fatalf("nodes[0] = %T", nodes[0])
	}
	if bl := fn.Filters[0].(*filter.BlacklistFilter); bl.Len() != 2 {
		t.Errorf("blacklist size = %d, want 2", bl.Len())
	}
	if top := nodes[2].(*rerank.TopNNode); top.N != 3 {
		t.Errorf("topn N = %d", top.N)
	}
}

func TestPostFactoryErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		cfg  map[string]any
	}{
		{"unknown type", "rerank.mmr", nil},
		{"blacklist without ids", "filter.blacklist", map[string]any{}},
		{"bad expression", "filter.expr", map[string]any{"expr": "item.genre =="}},
		{"bad diversity field", "rerank.diversity", map[string]any{"field": "title"}},
		{"user block without store", "filter.user_block", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Recommend.Post = append(cfg.Recommend.Post, nodeConfig(tt.typ, tt.cfg))
			if _, err := cfg.BuildPost(nil); !core.IsInvalidInput(err) {
				t.Fatalf("want INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestPostFactoryUserBlock(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()

	cfg := Default()
	cfg.Recommend.Post = append(cfg.Recommend.Post, nodeConfig("filter.user_block", nil))
	nodes, err := cfg.BuildPost(mem)
	if err != nil {
		t.Fatalf("BuildPost() error = %v", err)
	}
	if _, ok := nodes[0].(*filter.FilterNode); !ok {
		t.Fatalf("nodes[0] = %T", nodes[0])
	}
}
