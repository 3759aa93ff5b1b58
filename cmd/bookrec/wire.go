package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/llm"
	"github.com/rushteam/bookrec/logging"
	"github.com/rushteam/bookrec/source"
	"github.com/rushteam/bookrec/store"
)

// app 持有一次命令执行期间创建的全部依赖，由 close 统一释放。
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	src    source.Source
	cache  core.Store
	engine *engine.Engine
}

// loadConfig 读取配置并按 logging 段创建 logger。
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}

// newApp 打开数据源；withEngine 为 true 时继续创建缓存、扩展器并完成首次快照构建。
func newApp(ctx context.Context, withEngine bool) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger}
	ctx = logger.WithContext(ctx)

	if a.src, err = openSource(ctx, cfg.Source); err != nil {
		return nil, err
	}
	logger.Info().Str("source", a.src.Name()).Msg("data source opened")
	if !withEngine {
		return a, nil
	}

	if a.cache, err = openCache(ctx, cfg.Cache); err != nil {
		a.close(ctx)
		return nil, err
	}
	opts, err := engineOptions(cfg, a.src, a.cache, logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if a.engine, err = engine.New(ctx, opts); err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.src != nil {
		if err := a.src.Close(ctx); err != nil {
			a.log.Warn().Err(err).Msg("close data source")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close cache")
		}
	}
}

// openSource 按 source.kind 打开数据源。
func openSource(ctx context.Context, cfg config.SourceConfig) (source.Source, error) {
	switch cfg.Kind {
	case source.KindMongo:
		return source.OpenMongo(ctx, source.MongoConfig{
			URI:               cfg.Mongo.URI,
			Database:          cfg.Mongo.Database,
			BooksCollection:   cfg.Mongo.BooksCollection,
			RatingsCollection: cfg.Mongo.RatingsCollection,
			ReviewsCollection: cfg.Mongo.ReviewsCollection,
			Timeout:           cfg.Mongo.Timeout,
		})
	case source.KindSQLite:
		var opts []source.SQLiteOption
		if cfg.SQLite.Migrate {
			opts = append(opts, source.WithMigrate())
		}
		return source.OpenSQLite(ctx, cfg.SQLite.Path, opts...)
	case source.KindFile:
		return source.LoadFile(cfg.File.Path)
	default:
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeInvalidInput,
			fmt.Sprintf("source: unknown kind %q", cfg.Kind))
	}
}

// openCache 在启用时创建缓存存储，未启用返回 nil。
func openCache(ctx context.Context, cfg config.CacheConfig) (core.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return store.Open(ctx, cfg.Backend, cfg.Redis.Addr, cfg.Redis.DB)
}

// newExpander 组装关键词扩展链路：Client → 熔断 → 缓存。
// 缓存在最外层，命中时不计入熔断统计。
func newExpander(cfg config.LLMConfig, cache core.Store, ttl time.Duration, logger zerolog.Logger) (core.KeywordExpander, error) {
	if !cfg.Enabled {
		return llm.Disabled{}, nil
	}
	client, err := llm.NewClient(cfg.APIKey,
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithModel(cfg.Model),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxKeywords(cfg.MaxKeywords),
		llm.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}

	st := llm.DefaultBreakerSettings()
	if cfg.Breaker.MaxRequests > 0 {
		st.MaxRequests = cfg.Breaker.MaxRequests
	}
	if cfg.Breaker.Interval > 0 {
		st.Interval = cfg.Breaker.Interval
	}
	if cfg.Breaker.Timeout > 0 {
		st.Timeout = cfg.Breaker.Timeout
	}
	if cfg.Breaker.FailureThreshold > 0 {
		st.MinRequests = cfg.Breaker.FailureThreshold
	}
	var exp core.KeywordExpander = llm.NewBreakerExpander("llm", client, st, logger)
	if cache != nil {
		exp = llm.NewCachedExpander(exp, cache, ttl)
	}
	return exp, nil
}

func engineOptions(cfg *config.Config, src source.Source, cache core.Store, logger zerolog.Logger) (engine.Options, error) {
	exp, err := newExpander(cfg.LLM, cache, cfg.Cache.TTL, logger)
	if err != nil {
		return engine.Options{}, err
	}
	post, err := cfg.BuildPost(cache)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Books:          src,
		Ratings:        src,
		Expander:       exp,
		Index:          index.Options{MaxFeatures: cfg.Index.MaxFeatures, NGramMax: cfg.Index.NGramMax},
		MethodTimeout:  cfg.Recommend.MethodTimeout,
		KeywordTimeout: cfg.Recommend.KeywordTimeout,
		Exclude:        cfg.Recommend.Exclude,
		Post:           post,
		Logger:         &logger,
	}, nil
}

// exitCode 把领域错误映射为进程退出码：配置/输入问题为 2，其余为 1。
func exitCode(err error) int {
	if de := core.GetDomainError(err); de != nil && de.Code == core.ErrorCodeInvalidInput {
		return 2
	}
	return 1
}
