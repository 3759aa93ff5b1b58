package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pkg/utils"
)

// UserBasedCF 是基于用户的协同过滤召回源（User-CF）。
//
// 算法流程：
//  1. 目标用户评分行与其他所有用户行计算余弦相似度（显式排除自己）
//  2. 取 TopK 相似用户
//  3. 对目标用户未评分的每本书，按相似度加权平均邻居评分得到预测分
//  4. 预测分降序，优先取正分；没有正分时取原始预测分前 N
//
// 降级：用户不在矩阵中、没有候选、或结果都不在语料中时，
// 以语料顺序第一本该用户未评分的书为种子，走内容召回。
type UserBasedCF struct {
	// TopKSimilarUsers 参与预测的相似用户数，<=0 时取请求的 N
	TopKSimilarUsers int

	// Fallback 降级时使用的内容召回，为 nil 时降级直接返回空
	Fallback *ContentRecall
}

func (r *UserBasedCF) Name() string {
	return "recall.u2i"
}

func (r *UserBasedCF) Recall(
	ctx context.Context,
	snap *index.Snapshot,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	n := requestN(rctx)
	if snap == nil || rctx == nil || rctx.UserID == "" || n == 0 {
		return nil, nil
	}
	m := snap.Matrix

	u, ok := m.UserIndex(rctx.UserID)
	if !ok {
		return r.fallback(ctx, snap, rctx.UserID, n, ReasonUserNotInMatrix), nil
	}
	target := m.Row(u)

	// 相似用户
	topK := r.TopKSimilarUsers
	if topK <= 0 {
		topK = n
	}
	neighbors := make([]scored, 0, m.Len())
	for v := 0; v < m.Len(); v++ {
		if v == u {
			continue
		}
		neighbors = append(neighbors, scored{idx: v, score: index.Cosine(target, m.Row(v))})
	}
	rankDesc(neighbors)
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}

	// 未评分书目的预测分
	var weightSum float64
	for _, nb := range neighbors {
		weightSum += nb.score
	}
	cands := make([]scored, 0, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		if target[j] > 0 {
			continue
		}
		var pred float64
		if weightSum != 0 {
			var num float64
			for _, nb := range neighbors {
				num += nb.score * m.Row(nb.idx)[j]
			}
			pred = num / weightSum
		}
		cands = append(cands, scored{idx: j, score: pred})
	}
	if len(cands) == 0 {
		return r.fallback(ctx, snap, rctx.UserID, n, ReasonNoCandidates), nil
	}
	rankDesc(cands)

	ranked := cands[:0:0]
	for _, cd := range cands {
		if cd.score > 0 {
			ranked = append(ranked, cd)
		}
	}
	if len(ranked) == 0 {
		degrade(ctx, core.MethodCollaborative, ReasonNoPositivePredictions).
			Str("user_id", rctx.UserID).
			Int("candidates", len(cands)).
			Msg("using raw predictions")
		ranked = cands
	}

	out := make([]*core.Item, 0, n)
	for _, cd := range ranked {
		if len(out) >= n {
			break
		}
		bi, ok := snap.Corpus.IndexOf(m.BookID(cd.idx))
		if !ok {
			continue
		}
		it := core.NewItem(snap.Corpus.Book(bi), cd.score)
		it.PutLabel("cf_metric", utils.RecallLabel("cosine"))
		it.PutLabel("cf_neighbors", utils.RecallLabel(strconv.Itoa(len(neighbors))))
		out = append(out, it)
	}
	if len(out) == 0 {
		return r.fallback(ctx, snap, rctx.UserID, n, ReasonNothingResolvable), nil
	}
	return out, nil
}

// fallback 以语料顺序第一本用户未评分的书为种子做内容召回。
func (r *UserBasedCF) fallback(ctx context.Context, snap *index.Snapshot, userID string, n int, reason string) []*core.Item {
	ev := degrade(ctx, core.MethodCollaborative, reason).Str("user_id", userID)
	if r.Fallback == nil || snap.Corpus.Len() == 0 {
		ev.Msg("collaborative recall empty")
		return nil
	}
	seed := -1
	for i := 0; i < snap.Corpus.Len(); i++ {
		if !snap.Matrix.Rated(userID, snap.Corpus.Book(i).ID) {
			seed = i
			break
		}
	}
	if seed < 0 {
		ev.Msg("collaborative recall empty, every book already rated")
		return nil
	}
	ev.Str("seed_book", snap.Corpus.Book(seed).ID).Msg("falling back to content recall")
	metrics.RecordDegraded(core.MethodCollaborative, ReasonContentFallback)

	items := r.Fallback.similar(snap.Corpus, seed, n)
	for _, it := range items {
		it.PutLabel("cf_fallback", utils.RecallLabel(reason))
	}
	return items
}
