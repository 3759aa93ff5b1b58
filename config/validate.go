package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/source"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 错误信息使用配置路径而不是 Go 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate 先做字段级校验，再做跨字段校验；任何失败都是 INVALID_INPUT。
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
				"config: "+strings.Join(msgs, "; "))
		}
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: validate", err)
	}

	checks := []func() error{
		c.validateSource,
		c.validateRecommend,
		c.validateLLM,
		c.validateCache,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config", err)
		}
	}
	return nil
}

// describe 把 FieldError 转成 "recommend.default_n: min=1" 这样的形式。
func describe(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s (got %v)", path, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: %s", path, fe.Tag())
}

func (c *Config) validateSource() error {
	switch c.Source.Kind {
	case source.KindMongo:
		if c.Source.Mongo.URI == "" {
			return errors.New("source.mongo.uri is required (set MONGODB_URI)")
		}
	case source.KindSQLite:
		if c.Source.SQLite.Path == "" {
			return errors.New("source.sqlite.path is required")
		}
	case source.KindFile:
		if c.Source.File.Path == "" {
			return errors.New("source.file.path is required")
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultN > c.Recommend.MaxN {
		return fmt.Errorf("recommend.default_n (%d) must not exceed recommend.max_n (%d)",
			c.Recommend.DefaultN, c.Recommend.MaxN)
	}
	for i, n := range c.Recommend.Post {
		if n.Type == "" {
			return fmt.Errorf("recommend.post[%d].type is required", i)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required when llm.enabled (set OPENAI_API_KEY or disable llm)")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for the redis backend")
	}
	return nil
}
