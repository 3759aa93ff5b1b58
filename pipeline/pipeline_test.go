package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rushteam/bookrec/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "test.drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "test.fail" }
func (failing) Kind() Kind   { return KindReRank }
func (failing) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func items(n int) []*core.Item {
	out := make([]*core.Item, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &core.Item{ID: string(rune('a' + i))})
	}
	return out
}

func TestPipelineRun(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, dropFirst{}}}
	out, err := p.Run(context.Background(), nil, items(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "c" {
		t.Errorf("got %v", out)
	}

	var nilPipeline *Pipeline
	if out, _ := nilPipeline.Run(context.Background(), nil, items(2)); len(out) != 2 {
		t.Errorf("nil pipeline should pass items through")
	}

	_, err = (&Pipeline{Nodes: []Node{dropFirst{}, failing{}}}).Run(context.Background(), nil, items(2))
	if err == nil || !strings.Contains(err.Error(), "test.fail") {
		t.Errorf("error should name the failing node, got %v", err)
	}
}

func TestNodeFactory(t *testing.T) {
	f := NewNodeFactory()
	f.Register("test.drop_first", func(map[string]any) (Node, error) { return dropFirst{}, nil })
	f.Register("test.broken", func(map[string]any) (Node, error) { return nil, errors.New("bad config") })
	f.Register("", func(map[string]any) (Node, error) { return dropFirst{}, nil })
	f.Register("test.nil", nil)

	if got := f.Types(); len(got) != 2 || got[0] != "test.broken" || got[1] != "test.drop_first" {
		t.Fatalf("Types() = %v", got)
	}

	nodes, err := f.BuildNodes([]NodeConfig{{Type: "test.drop_first"}, {Type: "test.drop_first"}})
	if err != nil || len(nodes) != 2 {
		t.Fatalf("BuildNodes() = %v, %v", nodes, err)
	}

	_, err = f.Build("test.unknown", nil)
	if err == nil || !strings.Contains(err.Error(), "test.drop_first") {
		t.Errorf("unknown type error should list supported types, got %v", err)
	}

	_, err = f.BuildNodes([]NodeConfig{{Type: "test.drop_first"}, {Type: "test.broken"}})
	if err == nil || !strings.Contains(err.Error(), "#1") {
		t.Errorf("error should carry the node position, got %v", err)
	}
}
