package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// NodeConfig 是单个后处理 Node 的配置，来自服务配置文件的 recommend.post 列表。
type NodeConfig struct {
	Type   string         `koanf:"type" yaml:"type" json:"type"`       // filter.blacklist / filter.expr / rerank.diversity 等
	Config map[string]any `koanf:"config" yaml:"config" json:"config"` // Node 特定配置
}

// NodeBuilder 根据 config 构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	mu       sync.RWMutex
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册 Node 构建器，同名覆盖。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	if nodeType == "" || builder == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[nodeType] = builder
}

// Types 返回已注册的 Node 类型（排序），用于错误提示。
func (f *NodeFactory) Types() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	f.mu.RLock()
	builder, ok := f.builders[nodeType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown node type %q (supported: %v)", nodeType, f.Types())
	}
	return builder(config)
}

// BuildNodes 按顺序构建一组 Node。
func (f *NodeFactory) BuildNodes(configs []NodeConfig) ([]Node, error) {
	nodes := make([]Node, 0, len(configs))
	for i, nc := range configs {
		node, err := f.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node #%d %s: %w", i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
