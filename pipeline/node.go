package pipeline

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Kind 用于标记 Node 类型，方便按阶段打点。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：剔除命中排除规则的候选
	KindReRank Kind = "rerank" // 重排阶段：截断 / 调整召回结果
)

// Node 是后处理链路的最小单元，统一采用“输入 items -> 输出 items”的形态。
// Node 不得修改 items 指向的书目，只能增删 Item 或写 Label。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
