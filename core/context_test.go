package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/rushteam/bookrec/pkg/utils"
)

func TestRecommendContextMemo(t *testing.T) {
	rctx := &RecommendContext{}
	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := rctx.Memo("k", load); err != nil || v.(int) != 1 {
				t.Errorf("Memo() = %v, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	failures := 0
	fail := func() (any, error) {
		failures++
		return nil, errors.New("down")
	}
	for i := 0; i < 2; i++ {
		if _, err := rctx.Memo("err", fail); err == nil {
			t.Fatal("want error")
		}
	}
	if failures != 2 {
		t.Errorf("errors must not be cached, load called %d times", failures)
	}
}

func TestRecommendContextLabels(t *testing.T) {
	rctx := &RecommendContext{}
	if _, ok := rctx.GetLabel("x"); ok {
		t.Fatal("empty context has no labels")
	}
	rctx.PutLabel("x", utils.RecallLabel("a"))
	rctx.PutLabel("x", utils.RecallLabel("b"))
	if lbl, _ := rctx.GetLabel("x"); lbl.Value != "a|b" {
		t.Errorf("merged label = %+v", lbl)
	}
}
