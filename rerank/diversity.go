package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// Diversity 限制同一作者（或同一类型）在单个方法结果里出现的次数，保持原有顺序。
// 取值来源优先级：
// - label[Field].Value
// - 书目自身的 author / genre 字段
//
// 取不到值的书目不受限制。
type Diversity struct {
	Field       string // "author"（默认）或 "genre"
	MaxPerValue int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	field := n.Field
	if field == "" {
		field = "author"
	}
	limit := n.MaxPerValue
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(n.value(it, field)))
		if v == "" {
			out = append(out, it)
			continue
		}
		if seen[v] >= limit {
			continue
		}
		seen[v]++
		out = append(out, it)
	}
	return out, nil
}

func (n *Diversity) value(it *core.Item, field string) string {
	if lbl, ok := it.Labels[field]; ok && lbl.Value != "" {
		return lbl.Value
	}
	if it.Book == nil {
		return ""
	}
	switch field {
	case "author":
		return it.Book.Author
	case "genre":
		return it.Book.Genre
	}
	return ""
}
