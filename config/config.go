// Package config 加载服务配置：内置默认值 < YAML 文件 < 环境变量，加载后统一校验。
package config

import (
	"time"

	"github.com/rushteam/bookrec/pipeline"
)

// Config 是 bookrec 的完整配置。
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Source    SourceConfig    `koanf:"source"`
	Index     IndexConfig     `koanf:"index"`
	Recommend RecommendConfig `koanf:"recommend"`
	LLM       LLMConfig       `koanf:"llm"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SourceConfig 选择书目/评分数据源，Kind 决定读取哪个子配置。
type SourceConfig struct {
	Kind   string       `koanf:"kind" validate:"required,oneof=mongo sqlite file"`
	Mongo  MongoConfig  `koanf:"mongo"`
	SQLite SQLiteConfig `koanf:"sqlite"`
	File   FileConfig   `koanf:"file"`
}

type MongoConfig struct {
	URI               string        `koanf:"uri"`
	Database          string        `koanf:"database"`
	BooksCollection   string        `koanf:"books_collection"`
	RatingsCollection string        `koanf:"ratings_collection"`
	ReviewsCollection string        `koanf:"reviews_collection"`
	Timeout           time.Duration `koanf:"timeout"`
}

type SQLiteConfig struct {
	Path    string `koanf:"path"`
	Migrate bool   `koanf:"migrate"`
}

type FileConfig struct {
	Path string `koanf:"path"`
}

type IndexConfig struct {
	MaxFeatures int `koanf:"max_features" validate:"min=1"`
	NGramMax    int `koanf:"ngram_max" validate:"min=1,max=3"`
}

// RecommendConfig 控制返回数量与后处理。
//
// Exclude 是 CEL 表达式列表，命中任意一条的书目被过滤；Post 是按类型注册的额外后处理节点。
type RecommendConfig struct {
	DefaultN       int                   `koanf:"default_n" validate:"min=1"`
	MaxN           int                   `koanf:"max_n" validate:"min=1"`
	MethodTimeout  time.Duration         `koanf:"method_timeout"`
	KeywordTimeout time.Duration         `koanf:"keyword_timeout"`
	Exclude        []string              `koanf:"exclude"`
	Post           []pipeline.NodeConfig `koanf:"post"`
}

type LLMConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url" validate:"omitempty,url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	MaxTokens   int           `koanf:"max_tokens" validate:"min=1"`
	Temperature float64       `koanf:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxKeywords int           `koanf:"max_keywords" validate:"min=1"`
	Breaker     BreakerConfig `koanf:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Backend string        `koanf:"backend" validate:"oneof=memory redis"`
	TTL     time.Duration `koanf:"ttl"`
	Redis   RedisConfig   `koanf:"redis"`
}

type RedisConfig struct {
	Addr string `koanf:"addr"`
	DB   int    `koanf:"db" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default 返回全部默认值；文件和环境变量在此基础上覆盖。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{
			Kind: "mongo",
			Mongo: MongoConfig{
				URI:               "",
				Database:          "smartlibrary",
				BooksCollection:   "books",
				RatingsCollection: "ratings",
				ReviewsCollection: "reviews",
				Timeout:           10 * time.Second,
			},
			SQLite: SQLiteConfig{Path: "data/bookrec.db"},
		},
		Index: IndexConfig{
			MaxFeatures: 5000,
			NGramMax:    2,
		},
		Recommend: RecommendConfig{
			DefaultN:       5,
			MaxN:           100,
			MethodTimeout:  5 * time.Second,
			KeywordTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Enabled:     true,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4",
			MaxTokens:   150,
			Temperature: 0.7,
			Timeout:     30 * time.Second,
			MaxKeywords: 5,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     time.Hour,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
