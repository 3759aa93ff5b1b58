package recall

import (
	"context"
	"strings"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/pkg/utils"
)

// DefaultMaxKeywords 是关键词扩展保留的最大关键词数。
const DefaultMaxKeywords = 5

// KeywordRecall 是关键词扩展召回源：把自由文本偏好交给 Expander 扩展为关键词，
// 拼接后投影到语料的 TF-IDF 空间，按余弦相似度取前 N。
//
// Expander 调用失败、超时或返回空关键词时结果为空，只影响本方法。
type KeywordRecall struct {
	Expander core.KeywordExpander

	// Timeout 扩展调用的超时时间，<=0 表示只受上游 ctx 约束
	Timeout time.Duration

	// MaxKeywords 保留的关键词数，<=0 时取 DefaultMaxKeywords
	MaxKeywords int
}

func (r *KeywordRecall) Name() string { return "recall.keyword" }

func (r *KeywordRecall) Recall(
	ctx context.Context,
	snap *index.Snapshot,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	n := requestN(rctx)
	if snap == nil || rctx == nil || strings.TrimSpace(rctx.Preferences) == "" || n == 0 {
		return nil, nil
	}
	if snap.Corpus.Len() == 0 {
		degrade(ctx, core.MethodAIEnhanced, ReasonEmptyCorpus).Msg("keyword recall skipped")
		return nil, nil
	}
	if r.Expander == nil {
		degrade(ctx, core.MethodAIEnhanced, ReasonExpansionFailed).Msg("no keyword expander configured")
		return nil, nil
	}

	keywords, err := r.expand(ctx, rctx.Preferences)
	if err != nil {
		degrade(ctx, core.MethodAIEnhanced, ReasonExpansionFailed).Err(err).Msg("keyword expansion failed")
		return nil, nil
	}
	if len(keywords) == 0 {
		degrade(ctx, core.MethodAIEnhanced, ReasonEmptyExpansion).Msg("keyword expansion returned nothing")
		return nil, nil
	}

	c := snap.Corpus
	sims := c.Query(strings.Join(keywords, " "))
	cands := make([]scored, len(sims))
	for j, s := range sims {
		cands[j] = scored{idx: j, score: s}
	}
	rankDesc(cands)
	if len(cands) > n {
		cands = cands[:n]
	}

	joined := strings.Join(keywords, ",")
	out := make([]*core.Item, 0, len(cands))
	for _, cd := range cands {
		it := core.NewItem(c.Book(cd.idx), cd.score)
		it.PutLabel("keywords", utils.NewLabel(utils.SourceLLM, joined))
		out = append(out, it)
	}
	return out, nil
}

func (r *KeywordRecall) expand(ctx context.Context, text string) ([]string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	raw, err := r.Expander.ExpandPreferences(ctx, text)
	if err != nil {
		return nil, err
	}

	limit := r.MaxKeywords
	if limit <= 0 {
		limit = DefaultMaxKeywords
	}
	keywords := make([]string, 0, limit)
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
		if len(keywords) == limit {
			break
		}
	}
	return keywords, nil
}
