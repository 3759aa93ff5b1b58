package recall

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/metrics"
)

// Source 表示一种召回方法（内容 / 协同 / 关键词扩展）。
// 召回只读传入的快照，同一快照可被任意多个请求并发读取。
type Source interface {
	Name() string
	Recall(ctx context.Context, snap *index.Snapshot, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 降级原因，出现在日志字段 reason 与 bookrec_recall_degraded_total 指标中。
const (
	ReasonEmptyCorpus           = "empty_corpus"
	ReasonBookNotFound          = "book_not_found"
	ReasonUserNotInMatrix       = "user_not_in_matrix"
	ReasonNoCandidates          = "no_candidates"
	ReasonNoPositivePredictions = "no_positive_predictions"
	ReasonNothingResolvable     = "nothing_resolvable"
	ReasonContentFallback       = "content_fallback"
	ReasonExpansionFailed       = "expansion_failed"
	ReasonEmptyExpansion        = "empty_expansion"
	ReasonSourceError           = "source_error"
)

// degrade 记录降级指标并返回一条带 method/reason 的日志事件，调用方补充字段后 Msg。
func degrade(ctx context.Context, method, reason string) *zerolog.Event {
	metrics.RecordDegraded(method, reason)
	return zerolog.Ctx(ctx).Info().Str("method", method).Str("reason", reason)
}

// scored 是排序中的候选：下标 + 分数。
type scored struct {
	idx   int
	score float64
}

// rankDesc 按分数降序稳定排序，同分保持输入顺序。
func rankDesc(cands []scored) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
}

func requestN(rctx *core.RecommendContext) int {
	if rctx == nil || rctx.N <= 0 {
		return 0
	}
	return rctx.N
}
