package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Filter 判断一个 Item 是否应该从推荐结果中移除。
// 返回 true 表示移除，false 表示保留。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
