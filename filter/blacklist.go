package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// BlacklistFilter 过滤掉黑名单中的书目，ID 在构造时归一化。
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器，无法归一化的 ID 被忽略。
func NewBlacklistFilter(bookIDs []string) *BlacklistFilter {
	f := &BlacklistFilter{ids: make(map[string]struct{}, len(bookIDs))}
	for _, raw := range bookIDs {
		if id, ok := core.NormalizeID(raw); ok {
			f.ids[id] = struct{}{}
		}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Len 返回黑名单大小。
func (f *BlacklistFilter) Len() int { return len(f.ids) }

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, hit := f.ids[item.ID]
	return hit, nil
}
