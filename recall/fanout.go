package recall

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// Hybrid 是混合召回：按请求中存在的输入并发执行对应的召回方法，
// 每个方法的结果独立经过后处理链路，互不影响。
//
//   - BookID 非空 → Content（content_based）
//   - UserID 非空 → Collaborative（collaborative）
//   - Preferences 非空 → Keyword（ai_enhanced）
//
// 任一方法出错或超时只会让该方法的结果为空。返回值总是包含三个 key。
type Hybrid struct {
	Content       Source
	Collaborative Source
	Keyword       Source

	// Post 对每个方法的结果执行的后处理（过滤、截断），可为 nil
	Post *pipeline.Pipeline

	// Timeout 每个方法的超时时间，<=0 表示不限制
	Timeout time.Duration
}

type route struct {
	method string
	source Source
	input  string
}

func (h *Hybrid) routes(rctx *core.RecommendContext) []route {
	return []route{
		{core.MethodContentBased, h.Content, rctx.BookID},
		{core.MethodCollaborative, h.Collaborative, rctx.UserID},
		{core.MethodAIEnhanced, h.Keyword, rctx.Preferences},
	}
}

// Recall 执行全部可用的方法，返回 方法名 → 内部结果。
func (h *Hybrid) Recall(
	ctx context.Context,
	snap *index.Snapshot,
	rctx *core.RecommendContext,
) map[string][]*core.Item {
	out := make(map[string][]*core.Item, len(core.Methods))
	for _, m := range core.Methods {
		out[m] = []*core.Item{}
	}
	if rctx == nil {
		return out
	}

	var (
		mu    sync.Mutex
		eg, _ = errgroup.WithContext(ctx)
	)
	for _, rt := range h.routes(rctx) {
		if rt.input == "" || rt.source == nil {
			continue
		}
		method := rt.method
		eg.Go(func() error {
			items := h.Run(ctx, snap, rctx, method)
			mu.Lock()
			out[method] = items
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// Run 执行单个方法：超时控制、后处理、打点、日志。结果永不为 nil。
func (h *Hybrid) Run(
	ctx context.Context,
	snap *index.Snapshot,
	rctx *core.RecommendContext,
	method string,
) []*core.Item {
	var src Source
	for _, rt := range h.routes(rctx) {
		if rt.method == method {
			src = rt.source
		}
	}
	if src == nil {
		return []*core.Item{}
	}

	log := zerolog.Ctx(ctx).With().Str("method", method).Logger()
	ctx = log.WithContext(ctx)
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := src.Recall(ctx, snap, rctx)
	if err != nil {
		// 出错时该方法返回空结果，不影响其他方法
		degrade(ctx, method, ReasonSourceError).Err(err).Str("source", src.Name()).Msg("recall failed")
		items = nil
	}
	for _, it := range items {
		it.PutLabel("recall_source", utils.RecallLabel(method))
	}

	if h.Post != nil && len(items) > 0 {
		processed, err := h.Post.Run(ctx, rctx, items)
		if err != nil {
			log.Warn().Err(err).Msg("post-processing failed, using raw recall result")
		} else {
			items = processed
		}
	}
	if items == nil {
		items = []*core.Item{}
	}

	elapsed := time.Since(start)
	metrics.RecordRecall(method, elapsed, len(items))

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	log.Info().
		Str("source", src.Name()).
		Int("count", len(items)).
		Dur("elapsed", elapsed).
		Strs("book_ids", ids).
		Floats64("scores", core.Scores(items)).
		Msg("recall done")
	return items
}
