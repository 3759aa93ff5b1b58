package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/utils"
)

func books() []*core.Item {
	list := []core.Book{
		{ID: "b1", Author: "Stephen King", Genre: "Horror"},
		{ID: "b2", Author: "stephen king ", Genre: "Horror"},
		{ID: "b3", Author: "Frank Herbert", Genre: "Science Fiction"},
		{ID: "b4", Author: "", Genre: "Science Fiction"},
		{ID: "b5", Author: "", Genre: "Horror"},
	}
	out := make([]*core.Item, 0, len(list))
	for i := range list {
		out = append(out, core.NewItem(&list[i], 1))
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDiversity(t *testing.T) {
	tests := []struct {
		name string
		node *Diversity
		want []string
	}{
		{"author default", &Diversity{}, []string{"b1", "b3", "b4", "b5"}},
		{"author two each", &Diversity{Field: "author", MaxPerValue: 2}, []string{"b1", "b2", "b3", "b4", "b5"}},
		{"genre", &Diversity{Field: "genre"}, []string{"b1", "b3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.node.Process(context.Background(), nil, books())
			if err != nil {
				t.Fatal(err)
			}
			got := ids(out)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDiversityPrefersLabel(t *testing.T) {
	items := books()[:2]
	items[1].PutLabel("author", utils.RecallLabel("Ghostwriter"))
	out, _ := (&Diversity{}).Process(context.Background(), nil, items)
	if len(out) != 2 {
		t.Errorf("label value should override the book field, got %v", ids(out))
	}
}

func TestTopN(t *testing.T) {
	tests := []struct {
		name string
		node *TopNNode
		rctx *core.RecommendContext
		want int
	}{
		{"from request", &TopNNode{}, &core.RecommendContext{N: 2}, 2},
		{"explicit", &TopNNode{N: 3}, &core.RecommendContext{N: 1}, 3},
		{"larger than input", &TopNNode{N: 10}, nil, 5},
		{"no limit", &TopNNode{}, nil, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.node.Process(context.Background(), tt.rctx, books())
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.want {
				t.Errorf("got %d items, want %d", len(out), tt.want)
			}
		})
	}
}
