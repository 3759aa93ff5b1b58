package core

import (
	"sync"

	"github.com/rushteam/bookrec/pkg/utils"
)

// RecommendContext 承载一次推荐请求的输入，贯穿召回与后处理链路透传。
type RecommendContext struct {
	RequestID string

	// 三种召回方法各自的输入，为空表示该方法不参与
	UserID      string
	BookID      string
	Preferences string

	// N 是每个方法的返回条数
	N int

	// Labels 是请求级标签，可被过滤表达式读取
	Labels map[string]utils.Label

	// memo 缓存请求内只需读取一次的数据；三个召回方法并发共享同一个 rctx
	mu   sync.Mutex
	memo map[any]any
}

// Memo 返回 key 对应的请求级缓存值，首次访问时调用 load 填充。
// load 出错时不缓存。
func (rctx *RecommendContext) Memo(key any, load func() (any, error)) (any, error) {
	rctx.mu.Lock()
	defer rctx.mu.Unlock()
	if v, ok := rctx.memo[key]; ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	if rctx.memo == nil {
		rctx.memo = make(map[any]any)
	}
	rctx.memo[key] = v
	return v, nil
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
