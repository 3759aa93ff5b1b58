package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/pkg/utils"
)

// ContentRecall 是基于内容的召回源：按 TF-IDF 余弦相似度找与给定书目最相近的书。
//
// 规则：
//   - 排除目标书本身（下标与规范 ID 都排除）
//   - 相似度为 0 的书也参与排序，结果条数为 min(N, 语料大小-1)
//   - 同分按语料顺序
type ContentRecall struct{}

func (r *ContentRecall) Name() string { return "recall.content" }

func (r *ContentRecall) Recall(
	ctx context.Context,
	snap *index.Snapshot,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	n := requestN(rctx)
	if snap == nil || rctx == nil || rctx.BookID == "" || n == 0 {
		return nil, nil
	}
	if snap.Corpus.Len() == 0 {
		degrade(ctx, core.MethodContentBased, ReasonEmptyCorpus).Msg("content recall skipped")
		return nil, nil
	}
	idx, ok := snap.Corpus.Lookup(rctx.BookID)
	if !ok {
		degrade(ctx, core.MethodContentBased, ReasonBookNotFound).
			Str("book_id", rctx.BookID).
			Msg("content recall skipped")
		return nil, nil
	}
	return r.similar(snap.Corpus, idx, n), nil
}

// similar 返回与第 idx 本书最相似的 n 本书。
func (r *ContentRecall) similar(c *index.Corpus, idx, n int) []*core.Item {
	sims := c.SimilarTo(idx)
	target := c.Book(idx).ID

	cands := make([]scored, 0, len(sims))
	for j, s := range sims {
		if j == idx || c.Book(j).ID == target {
			continue
		}
		cands = append(cands, scored{idx: j, score: s})
	}
	rankDesc(cands)
	if len(cands) > n {
		cands = cands[:n]
	}

	out := make([]*core.Item, 0, len(cands))
	for _, cd := range cands {
		it := core.NewItem(c.Book(cd.idx), cd.score)
		it.PutLabel("recall_metric", utils.RecallLabel("cosine"))
		it.PutLabel("seed_book", utils.RecallLabel(target))
		out = append(out, it)
	}
	return out
}
