package config

import (
	"fmt"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/conv"
	"github.com/rushteam/bookrec/rerank"
)

// PostFactory 返回内置后处理 Node 的工厂。store 为 nil 时 filter.user_block 不可用。
//
//	recommend:
//	  post:
//	    - type: filter.blacklist
//	      config: {ids: ["b1", "b2"]}
//	    - type: filter.expr
//	      config: {expr: 'item.genre == "Horror"'}
//	    - type: filter.user_block
//	      config: {key_prefix: "bookrec:block"}
//	    - type: rerank.diversity
//	      config: {field: author, max_per_value: 2}
func PostFactory(store core.Store) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()
	f.Register("filter.blacklist", buildBlacklistNode)
	f.Register("filter.expr", buildExprNode)
	f.Register("rerank.diversity", buildDiversityNode)
	f.Register("rerank.topn", buildTopNNode)
	if store != nil {
		f.Register("filter.user_block", func(cfg map[string]any) (pipeline.Node, error) {
			prefix := conv.ConfigGet(cfg, "key_prefix", filter.DefaultUserBlockPrefix)
			return &filter.FilterNode{Filters: []filter.Filter{filter.NewUserBlockFilter(store, prefix)}}, nil
		})
	}
	return f
}

// BuildPost 构建 recommend.post 中配置的后处理 Node。
func (c *Config) BuildPost(store core.Store) ([]pipeline.Node, error) {
	nodes, err := PostFactory(store).BuildNodes(c.Recommend.Post)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: recommend.post", err)
	}
	return nodes, nil
}

func buildBlacklistNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToString(cfg["ids"])
	if len(ids) == 0 {
		return nil, fmt.Errorf("ids is required")
	}
	return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(ids)}}, nil
}

func buildExprNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr is required")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

func buildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	field := conv.ConfigGet(cfg, "field", "author")
	if field != "author" && field != "genre" {
		return nil, fmt.Errorf("field must be author or genre, got %q", field)
	}
	return &rerank.Diversity{
		Field:       field,
		MaxPerValue: conv.ConfigGetInt(cfg, "max_per_value", 1),
	}, nil
}

func buildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
