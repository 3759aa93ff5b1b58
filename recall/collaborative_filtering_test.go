package recall

import (
	"context"
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
)

func newCF() *UserBasedCF {
	return &UserBasedCF{Fallback: &ContentRecall{}}
}

func TestUserBasedCFScenario(t *testing.T) {
	snap := scenarioSnapshot()
	items, err := newCF().Recall(context.Background(), snap, &core.RecommendContext{UserID: "u1", N: 2})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(items)
	if len(got) != 2 || got[0] != "b4" || got[1] != "b5" {
		t.Fatalf("got %v, want [b4 b5]", got)
	}
	for _, it := range items {
		if snap.Matrix.Rated("u1", it.ID) {
			t.Errorf("%s already rated by u1", it.ID)
		}
		if it.Score <= 0 {
			t.Errorf("%s should have a positive prediction, got %v", it.ID, it.Score)
		}
		if _, ok := it.Labels["cf_fallback"]; ok {
			t.Errorf("no fallback expected for u1")
		}
	}
}

func TestUserBasedCFExcludesSelf(t *testing.T) {
	snap := index.Build(scifiBooks(), []core.RatingEntry{
		{UserID: "ua", BookID: "b1", Value: 5},
		{UserID: "ub", BookID: "b1", Value: 5},
		{UserID: "ub", BookID: "b2", Value: 4},
	}, index.Options{}, 1)

	items, _ := newCF().Recall(context.Background(), snap, &core.RecommendContext{UserID: "ua", N: 1})
	if len(items) != 1 || items[0].ID != "b2" {
		t.Fatalf("got %v, want [b2]", ids(items))
	}
	// 邻居只有 ub（相似度 1），预测分应等于 ub 的评分
	if items[0].Score != 4 {
		t.Errorf("prediction = %v, want 4", items[0].Score)
	}
}

func TestUserBasedCFRawPredictionsWhenNoneArePositive(t *testing.T) {
	snap := index.Build(scifiBooks(), []core.RatingEntry{
		{UserID: "ua", BookID: "b1", Value: 5},
		{UserID: "ub", BookID: "b2", Value: 4},
	}, index.Options{}, 1)

	items, _ := newCF().Recall(context.Background(), snap, &core.RecommendContext{UserID: "ua", N: 3})
	if len(items) != 1 || items[0].ID != "b2" || items[0].Score != 0 {
		t.Fatalf("want the raw zero prediction for b2, got %v", ids(items))
	}
}

func TestUserBasedCFFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []core.RatingEntry
		user     string
		n        int
		wantLen  int
		wantSeed string
	}{
		{
			name:     "user not in matrix",
			ratings:  scenarioRatings(),
			user:     "ghost",
			n:        3,
			wantLen:  3,
			wantSeed: "b1",
		},
		{
			name: "predictions not in corpus",
			ratings: []core.RatingEntry{
				{UserID: "ua", BookID: "b1", Value: 5},
				{UserID: "ub", BookID: "b1", Value: 5},
				{UserID: "ub", BookID: "zz", Value: 4},
			},
			user:     "ua",
			n:        2,
			wantLen:  2,
			wantSeed: "b2",
		},
		{
			name: "no candidates",
			ratings: []core.RatingEntry{
				{UserID: "ua", BookID: "b1", Value: 5},
				{UserID: "ua", BookID: "b2", Value: 3},
				{UserID: "ub", BookID: "b1", Value: 2},
			},
			user:     "ua",
			n:        2,
			wantLen:  2,
			wantSeed: "b3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := index.Build(scifiBooks(), tt.ratings, index.Options{}, 1)
			items, err := newCF().Recall(context.Background(), snap, &core.RecommendContext{UserID: tt.user, N: tt.n})
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.wantLen {
				t.Fatalf("got %v, want %d items", ids(items), tt.wantLen)
			}
			for _, it := range items {
				if it.ID == tt.wantSeed {
					t.Errorf("seed %s must not be recommended", tt.wantSeed)
				}
				if lbl, ok := it.Labels["seed_book"]; !ok || lbl.Value != tt.wantSeed {
					t.Errorf("seed_book label = %+v, want %s", lbl, tt.wantSeed)
				}
				if _, ok := it.Labels["cf_fallback"]; !ok {
					t.Errorf("fallback label missing on %s", it.ID)
				}
			}
		})
	}
}

func TestUserBasedCFEveryBookRated(t *testing.T) {
	books := scifiBooks()[:2]
	snap := index.Build(books, []core.RatingEntry{
		{UserID: "ua", BookID: "b1", Value: 5},
		{UserID: "ua", BookID: "b2", Value: 3},
	}, index.Options{}, 1)
	items, err := newCF().Recall(context.Background(), snap, &core.RecommendContext{UserID: "ua", N: 2})
	if err != nil || len(items) != 0 {
		t.Fatalf("want empty result, got %v, %v", ids(items), err)
	}
}

func TestUserBasedCFWithoutFallback(t *testing.T) {
	items, _ := (&UserBasedCF{}).Recall(context.Background(), scenarioSnapshot(), &core.RecommendContext{UserID: "ghost", N: 3})
	if len(items) != 0 {
		t.Fatalf("without fallback an unknown user gets nothing, got %v", ids(items))
	}
}
