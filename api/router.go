// Package api 是推荐服务的 HTTP 层，路由与请求/响应格式兼容原推荐服务。
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/index"
)

// Recommender 是 HTTP 层依赖的引擎能力，*engine.Engine 满足该接口。
type Recommender interface {
	GetContentBased(ctx context.Context, bookID string, n int) []core.Recommendation
	GetCollaborative(ctx context.Context, userID string, n int) []core.Recommendation
	GetKeywordExpanded(ctx context.Context, preferences string, n int) []core.Recommendation
	GetHybrid(ctx context.Context, req engine.HybridRequest) core.HybridResult
	Refresh(ctx context.Context) (index.Stats, error)
	Stats() index.Stats
}

var _ Recommender = (*engine.Engine)(nil)

// 请求数量的默认值与上限。
const (
	DefaultN    = 5
	DefaultMaxN = 100
)

// Option 配置路由。
type Option func(*handler)

// WithLimits 设置 n_recommendations 缺省时的取值与允许的上限，<=0 的参数保持默认。
func WithLimits(defaultN, maxN int) Option {
	return func(h *handler) {
		if defaultN > 0 {
			h.defaultN = defaultN
		}
		if maxN > 0 {
			h.maxN = maxN
		}
	}
}

// NewRouter 注册全部路由。
//
//	POST /recommendations/content-based
//	POST /recommendations/collaborative
//	POST /recommendations/ai-enhanced
//	POST /recommendations/hybrid
//	POST /recommendations/refresh
//	GET  /health
//	GET  /metrics
func NewRouter(rec Recommender, logger zerolog.Logger, opts ...Option) http.Handler {
	h := &handler{rec: rec, defaultN: DefaultN, maxN: DefaultMaxN}
	for _, opt := range opts {
		opt(h)
	}
	if h.defaultN > h.maxN {
		h.defaultN = h.maxN
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/recommendations", func(r chi.Router) {
		r.Use(observe)
		r.Post("/content-based", h.contentBased)
		r.Post("/collaborative", h.collaborative)
		r.Post("/ai-enhanced", h.aiEnhanced)
		r.Post("/hybrid", h.hybrid)
		r.Post("/refresh", h.refresh)
	})
	return r
}
