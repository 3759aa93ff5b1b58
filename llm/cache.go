package llm

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/metrics"
)

// CachedExpander 把成功且非空的扩展结果缓存到 core.Store，相同偏好文本在 TTL 内不再调用上游。
// 缓存读写失败只记日志，不影响扩展本身。
type CachedExpander struct {
	next   core.KeywordExpander
	store  core.Store
	ttl    time.Duration
	prefix string
}

// NewCachedExpander 创建带缓存的扩展器，ttl<=0 表示不过期。
func NewCachedExpander(next core.KeywordExpander, store core.Store, ttl time.Duration) *CachedExpander {
	return &CachedExpander{next: next, store: store, ttl: ttl, prefix: "bookrec:kw:"}
}

// Key 返回偏好文本对应的缓存 key；文本先做空白与大小写归一。
func (c *CachedExpander) Key(text string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(text), " "))
	return c.prefix + strconv.FormatUint(xxhash.Sum64String(norm), 16)
}

func (c *CachedExpander) ExpandPreferences(ctx context.Context, text string) ([]string, error) {
	log := zerolog.Ctx(ctx)
	key := c.Key(text)

	if raw, err := c.store.Get(ctx, key); err == nil {
		var kws []string
		if err := json.Unmarshal(raw, &kws); err == nil && len(kws) > 0 {
			metrics.KeywordCache.WithLabelValues("hit").Inc()
			log.Debug().Str("cache_key", key).Strs("keywords", kws).Msg("keyword cache hit")
			return kws, nil
		}
	} else if !core.IsStoreNotFound(err) {
		metrics.KeywordCache.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("store", c.store.Name()).Msg("keyword cache read failed")
	}
	metrics.KeywordCache.WithLabelValues("miss").Inc()

	kws, err := c.next.ExpandPreferences(ctx, text)
	if err != nil || len(kws) == 0 {
		return kws, err
	}

	if raw, err := json.Marshal(kws); err == nil {
		if err := c.store.Set(ctx, key, raw, int(c.ttl/time.Second)); err != nil {
			metrics.KeywordCache.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("store", c.store.Name()).Msg("keyword cache write failed")
		}
	}
	return kws, nil
}

var _ core.KeywordExpander = (*CachedExpander)(nil)
