package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/bookrec/core"
)

// PathEnvVar 指定配置文件路径，优先于 DefaultPaths。
const PathEnvVar = "BOOKREC_CONFIG"

// EnvPrefix 通用环境变量前缀：BOOKREC_SOURCE_MONGO_URI -> source.mongo.uri。
const EnvPrefix = "BOOKREC_"

// DefaultPaths 未显式指定时按顺序查找的配置文件，第一个存在的生效。
var DefaultPaths = []string{
	"bookrec.yaml",
	"config.yaml",
	"/etc/bookrec/config.yaml",
}

// legacyEnv 兼容原部署使用的环境变量名。
var legacyEnv = map[string]string{
	"mongodb_uri":                   "source.mongo.uri",
	"database_name":                 "source.mongo.database",
	"openai_api_key":                "llm.api_key",
	"openai_model":                  "llm.model",
	"openai_max_tokens":             "llm.max_tokens",
	"openai_temperature":            "llm.temperature",
	"openai_base_url":               "llm.base_url",
	"tfidf_max_features":            "index.max_features",
	"default_recommendations_count": "recommend.default_n",
	"log_level":                     "logging.level",
	"log_format":                    "logging.format",
	"cache_enabled":                 "cache.enabled",
	"cache_ttl":                     "cache.ttl",
	"redis_addr":                    "cache.redis.addr",
	"ai_service_host":               "server.host",
	"ai_service_port":               "server.port",
}

// sliceSep 是列表型配置在环境变量中的分隔符；CEL 表达式里常见逗号，所以用分号。
const sliceSep = ";"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Load 按 默认值 < 配置文件 < 环境变量 的顺序合并配置并校验。
// path 为空时依次尝试 $BOOKREC_CONFIG 与 DefaultPaths，都不存在则只用默认值和环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := koanf.New(".")
	if err := defaults.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if err := k.Merge(defaults); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: file "+path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: parse "+path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", envTransform(defaults))
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: unmarshal", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform 把环境变量映射为 koanf 路径，无法识别的变量返回空 key 被忽略。
// 已知路径表来自默认值，因此新增配置项无需再维护映射。
func envTransform(defaults *koanf.Koanf) func(key, value string) (string, any) {
	known := make(map[string]string, len(defaults.Keys()))
	for _, p := range defaults.Keys() {
		known[strings.ReplaceAll(p, ".", "_")] = p
	}

	return func(key, value string) (string, any) {
		lower := strings.ToLower(key)
		path, ok := legacyEnv[lower]
		if !ok {
			if !strings.HasPrefix(key, EnvPrefix) {
				return "", nil
			}
			path, ok = known[strings.TrimPrefix(lower, strings.ToLower(EnvPrefix))]
			if !ok {
				return "", nil
			}
		}

		switch defaults.Get(path).(type) {
		case time.Duration:
			// 兼容 CACHE_TTL=3600 这种纯秒数写法
			if digitsOnly.MatchString(value) {
				return path, value + "s"
			}
		case []string:
			return path, splitList(value)
		}
		if path == "logging.level" || path == "logging.format" {
			return path, strings.ToLower(value)
		}
		return path, value
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, sliceSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
