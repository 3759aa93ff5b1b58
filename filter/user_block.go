package filter

import (
	"context"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
)

// DefaultUserBlockPrefix 是用户屏蔽列表的默认 key 前缀。
const DefaultUserBlockPrefix = "bookrec:block"

// UserBlockFilter 过滤用户屏蔽过的书目。
// 屏蔽列表以 JSON 字符串数组保存在 Store 的 {KeyPrefix}:{UserID} 下。
// 同一次请求内列表只读取一次。
type UserBlockFilter struct {
	Store     core.Store
	KeyPrefix string
}

// NewUserBlockFilter 创建一个用户屏蔽过滤器。
func NewUserBlockFilter(store core.Store, keyPrefix string) *UserBlockFilter {
	if keyPrefix == "" {
		keyPrefix = DefaultUserBlockPrefix
	}
	return &UserBlockFilter{Store: store, KeyPrefix: keyPrefix}
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

// Key 返回用户屏蔽列表的存储 key。
func (f *UserBlockFilter) Key(userID string) string {
	return f.KeyPrefix + ":" + userID
}

// Block 把书目加入用户屏蔽列表。
func (f *UserBlockFilter) Block(ctx context.Context, userID string, bookIDs ...string) error {
	blocked, err := f.load(ctx, userID)
	if err != nil && !core.IsStoreNotFound(err) {
		return err
	}
	for _, raw := range bookIDs {
		if id, ok := core.NormalizeID(raw); ok {
			blocked[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(blocked))
	for id := range blocked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, f.Key(userID), data)
}

func (f *UserBlockFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Store == nil {
		return false, nil
	}

	blocked, err := f.blockedFor(ctx, rctx)
	if err != nil {
		// 读不到屏蔽列表时不过滤
		return false, nil
	}
	_, hit := blocked[item.ID]
	return hit, nil
}

type blockMemoKey struct{ prefix string }

// blockedFor 把读到的列表缓存在 rctx 上，避免每个 item 都访问 Store。
func (f *UserBlockFilter) blockedFor(ctx context.Context, rctx *core.RecommendContext) (map[string]struct{}, error) {
	v, err := rctx.Memo(blockMemoKey{prefix: f.KeyPrefix}, func() (any, error) {
		blocked, err := f.load(ctx, rctx.UserID)
		if err != nil && !core.IsStoreNotFound(err) {
			return nil, err
		}
		return blocked, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]struct{}), nil
}

func (f *UserBlockFilter) load(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	data, err := f.Store.Get(ctx, f.Key(userID))
	if err != nil {
		return out, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return out, err
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
