package recall

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
)

func staticExpander(keywords ...string) core.KeywordExpander {
	return core.KeywordExpanderFunc(func(context.Context, string) ([]string, error) {
		return keywords, nil
	})
}

func TestKeywordRecall(t *testing.T) {
	r := &KeywordRecall{Expander: staticExpander("dragon", "journey", "treasure")}
	items, err := r.Recall(context.Background(), scenarioSnapshot(), &core.RecommendContext{Preferences: "I like adventures with dragons", N: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "b4" {
		t.Errorf("best match = %s, want b4", items[0].ID)
	}
	if items[0].Score < items[1].Score {
		t.Errorf("scores not descending")
	}
	if lbl := items[0].Labels["keywords"]; lbl.Value != "dragon,journey,treasure" {
		t.Errorf("keywords label = %q", lbl.Value)
	}
}

func TestKeywordRecallCapsKeywords(t *testing.T) {
	r := &KeywordRecall{Expander: staticExpander("a1", " ", "a2", "a3", "a4", "a5", "a6", "a7")}
	items, _ := r.Recall(context.Background(), scenarioSnapshot(), &core.RecommendContext{Preferences: "x", N: 1})
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if got := items[0].Labels["keywords"].Value; got != "a1,a2,a3,a4,a5" {
		t.Errorf("keywords = %q, want first five non-empty", got)
	}
}

func TestKeywordRecallDegrades(t *testing.T) {
	failing := core.KeywordExpanderFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("upstream down")
	})
	blocking := core.KeywordExpanderFunc(func(ctx context.Context, _ string) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	tests := []struct {
		name string
		r    *KeywordRecall
		snap *index.Snapshot
		pref string
	}{
		{"empty expansion", &KeywordRecall{Expander: staticExpander()}, scenarioSnapshot(), "anything"},
		{"blank keywords", &KeywordRecall{Expander: staticExpander("", "  ")}, scenarioSnapshot(), "anything"},
		{"expander error", &KeywordRecall{Expander: failing}, scenarioSnapshot(), "anything"},
		{"expander timeout", &KeywordRecall{Expander: blocking, Timeout: 20 * time.Millisecond}, scenarioSnapshot(), "anything"},
		{"no expander", &KeywordRecall{}, scenarioSnapshot(), "anything"},
		{"empty corpus", &KeywordRecall{Expander: staticExpander("dragon")}, index.Empty(), "anything"},
		{"blank preferences", &KeywordRecall{Expander: staticExpander("dragon")}, scenarioSnapshot(), "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			items, err := tt.r.Recall(context.Background(), tt.snap, &core.RecommendContext{Preferences: tt.pref, N: 3})
			if err != nil {
				t.Fatalf("errors must be absorbed, got %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("want empty, got %v", ids(items))
			}
			if time.Since(start) > 2*time.Second {
				t.Errorf("recall took too long")
			}
		})
	}
}

func TestKeywordRecallPassesPreferenceText(t *testing.T) {
	var seen string
	exp := core.KeywordExpanderFunc(func(_ context.Context, text string) ([]string, error) {
		seen = text
		return []string{"cyberspace"}, nil
	})
	items, _ := (&KeywordRecall{Expander: exp}).Recall(context.Background(), scenarioSnapshot(),
		&core.RecommendContext{Preferences: "hackers and neon", N: 1})
	if !strings.Contains(seen, "hackers and neon") {
		t.Errorf("expander got %q", seen)
	}
	if len(items) != 1 || items[0].ID != "b5" {
		t.Errorf("got %v, want [b5]", ids(items))
	}
}
