package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// FilterNode 组合多个过滤器，任何一个过滤器返回 true 该物品就被移除。
// 过滤器出错时保留该物品。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	log := zerolog.Ctx(ctx)
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				log.Warn().Err(err).Str("filter", f.Name()).Str("book_id", item.ID).Msg("filter failed, keeping item")
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			item.PutLabel("filtered", utils.NewLabel(reason, "true"))
			log.Debug().Str("filter", reason).Str("book_id", item.ID).Msg("item filtered")
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
