// Package bookrec 是图书推荐服务（Book Recommendation）。
//
// 设计要点：
// - Snapshot-first: 书目与评分在刷新时一次性构建为不可变快照（TF-IDF 语料 + 评分矩阵），请求只读快照
// - 三路召回: 内容相似、基于用户的协同过滤、LLM 关键词扩展，混合推荐并发执行、互不影响
// - Pipeline 后处理: 排除表达式、屏蔽列表、多样性等节点按配置串联在召回之后
//
// 入口见 engine.New 与 cmd/bookrec。
package bookrec

import (
	"context"

	"github.com/rushteam/bookrec/engine"
	"github.com/rushteam/bookrec/pipeline"
)

// 轻量 facade：便于直接 import "bookrec" 使用核心抽象。
type (
	Engine        = engine.Engine
	Options       = engine.Options
	HybridRequest = engine.HybridRequest
	Node          = pipeline.Node
)

// New 等同于 engine.New。
func New(ctx context.Context, opts Options) (*Engine, error) {
	return engine.New(ctx, opts)
}
