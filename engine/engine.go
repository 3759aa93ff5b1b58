// Package engine 是混合推荐引擎的入口：持有当前索引快照，负责刷新，
// 并把内容 / 协同 / 关键词扩展三种召回组织成对外的推荐接口。
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/logging"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/rerank"
)

// DefaultKeywordTimeout 是关键词扩展调用的默认超时。
const DefaultKeywordTimeout = 30 * time.Second

// Options 是引擎的依赖与参数。数据源与关键词扩展由调用方创建并负责关闭。
type Options struct {
	Books    core.BookSource
	Ratings  core.RatingSource
	Expander core.KeywordExpander

	Index index.Options

	// MethodTimeout 单个召回方法的超时，<=0 不限制
	MethodTimeout time.Duration
	// KeywordTimeout 关键词扩展调用的超时
	KeywordTimeout time.Duration

	// Exclude 是 CEL 排除表达式，命中任意一条的书目不返回
	Exclude []string
	// Post 追加在排除过滤之后、Top-N 截断之前的后处理节点
	Post []pipeline.Node

	Logger *zerolog.Logger
}

// HybridRequest 是混合推荐的输入，空字段表示对应方法不参与。N <= 0 时各方法都为空。
type HybridRequest struct {
	UserID      string
	BookID      string
	Preferences string
	N           int
}

// Engine 是并发安全的推荐引擎。
// 请求读取 atomic 持有的快照；Refresh 在旁路构建新快照后整体替换。
type Engine struct {
	books   core.BookSource
	ratings core.RatingSource
	index   index.Options

	hybrid *recall.Hybrid
	log    zerolog.Logger

	snap      atomic.Pointer[index.Snapshot]
	refreshMu sync.Mutex
	version   uint64
}

// New 创建引擎并完成首次刷新；数据源不可用时返回错误。
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Books == nil || opts.Ratings == nil {
		return nil, errors.New("engine: book and rating sources are required")
	}
	e := &Engine{
		books:   opts.Books,
		ratings: opts.Ratings,
		index:   opts.Index,
		log:     zerolog.Nop(),
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "engine").Logger()
	}

	post, err := buildPost(opts.Exclude, opts.Post)
	if err != nil {
		return nil, err
	}

	keywordTimeout := opts.KeywordTimeout
	if keywordTimeout <= 0 {
		keywordTimeout = DefaultKeywordTimeout
	}
	content := &recall.ContentRecall{}
	e.hybrid = &recall.Hybrid{
		Content:       content,
		Collaborative: &recall.UserBasedCF{Fallback: content},
		Keyword:       &recall.KeywordRecall{Expander: opts.Expander, Timeout: keywordTimeout},
		Post:          post,
		Timeout:       opts.MethodTimeout,
	}
	e.snap.Store(index.Empty())

	if _, err := e.Refresh(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// buildPost 组装后处理链路：排除过滤 → 自定义节点 → Top-N 截断。
func buildPost(exclude []string, extra []pipeline.Node) (*pipeline.Pipeline, error) {
	var nodes []pipeline.Node
	if len(exclude) > 0 {
		filters := make([]filter.Filter, 0, len(exclude))
		for _, expr := range exclude {
			f, err := filter.NewExprFilter(expr)
			if err != nil {
				return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "engine: exclude "+expr, err)
			}
			filters = append(filters, f)
		}
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	nodes = append(nodes, extra...)
	nodes = append(nodes, &rerank.TopNNode{})
	return &pipeline.Pipeline{Nodes: nodes}, nil
}

// Refresh 从数据源重新加载书目与评分并替换快照。
// 多次并发调用串行执行；失败时保留旧快照。
func (e *Engine) Refresh(ctx context.Context) (index.Stats, error) {
	e.refreshMu.Lock()
	defer e.refreshMu.Unlock()

	start := time.Now()
	snap, err := e.build(ctx)
	metrics.RecordRefresh(time.Since(start), err)
	if err != nil {
		e.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("refresh failed, keeping previous snapshot")
		return e.Snapshot().Stats(), err
	}

	e.snap.Store(snap)
	stats := snap.Stats()
	metrics.SetSnapshot(stats.Books, stats.Users, stats.Ratings)
	e.log.Info().
		Uint64("version", stats.Version).
		Int("books", stats.Books).
		Int("vocabulary", stats.Vocabulary).
		Int("users", stats.Users).
		Int("ratings", stats.Ratings).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot refreshed")
	return stats, nil
}

func (e *Engine) build(ctx context.Context) (*index.Snapshot, error) {
	books, err := e.books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := e.ratings.ListRatings(ctx)
	if err != nil {
		return nil, err
	}
	e.version++
	return index.Build(books, ratings, e.index, e.version), nil
}

// Snapshot 返回当前快照。
func (e *Engine) Snapshot() *index.Snapshot {
	return e.snap.Load()
}

// Stats 返回当前快照概要。
func (e *Engine) Stats() index.Stats {
	return e.Snapshot().Stats()
}

// normalizeID 把调用方传入的 ID 转为入库时的规范形式，与数据源归一化规则一致。
func normalizeID(raw string) string {
	id, _ := core.NormalizeID(raw)
	return id
}

func (e *Engine) begin(ctx context.Context, rctx *core.RecommendContext) context.Context {
	if logging.HasLogger(ctx) {
		if rctx.RequestID = logging.RequestID(ctx); rctx.RequestID == "" {
			rctx.RequestID = logging.NewRequestID()
		}
		return ctx
	}
	ctx, rctx.RequestID = logging.WithRequest(ctx, e.log, logging.RequestID(ctx))
	return ctx
}

func (e *Engine) single(ctx context.Context, method string, rctx *core.RecommendContext) []core.Recommendation {
	ctx = e.begin(ctx, rctx)
	items := e.hybrid.Run(ctx, e.Snapshot(), rctx, method)
	return core.ToRecommendations(items)
}

// GetContentBased 返回与 bookID 最相似的至多 n 本书，不含其自身；书目不存在或 n <= 0 时为空。
func (e *Engine) GetContentBased(ctx context.Context, bookID string, n int) []core.Recommendation {
	return e.single(ctx, core.MethodContentBased, &core.RecommendContext{BookID: bookID, N: n})
}

// GetCollaborative 返回 userID 的协同过滤推荐，无法预测时回退到内容推荐。
func (e *Engine) GetCollaborative(ctx context.Context, userID string, n int) []core.Recommendation {
	return e.single(ctx, core.MethodCollaborative, &core.RecommendContext{UserID: normalizeID(userID), N: n})
}

// GetKeywordExpanded 用 LLM 扩展偏好文本为关键词后检索；扩展失败时为空。
func (e *Engine) GetKeywordExpanded(ctx context.Context, preferences string, n int) []core.Recommendation {
	return e.single(ctx, core.MethodAIEnhanced, &core.RecommendContext{Preferences: preferences, N: n})
}

// GetHybrid 并发执行输入齐备的方法；结果总是包含三个 key。
func (e *Engine) GetHybrid(ctx context.Context, req HybridRequest) core.HybridResult {
	rctx := &core.RecommendContext{
		UserID:      normalizeID(req.UserID),
		BookID:      req.BookID,
		Preferences: req.Preferences,
		N:           req.N,
	}
	ctx = e.begin(ctx, rctx)

	res := core.NewHybridResult()
	for method, items := range e.hybrid.Recall(ctx, e.Snapshot(), rctx) {
		res[method] = core.ToRecommendations(items)
	}
	zerolog.Ctx(ctx).Info().
		Bool("has_user", req.UserID != "").
		Bool("has_book", req.BookID != "").
		Bool("has_preferences", req.Preferences != "").
		Int("n", rctx.N).
		Int("total", res.Total()).
		Int("unique", len(res.Merge())).
		Msg("hybrid recommendation done")
	return res
}
