package dsl

import (
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/utils"
)

func TestExprEval(t *testing.T) {
	book := &core.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"}
	item := core.NewItem(book, 0.8)
	item.PutLabel("cf_fallback", utils.RecallLabel("unknown_user"))
	rctx := &core.RecommendContext{UserID: "u1", BookID: "b9", Preferences: "space"}

	tests := []struct {
		expr    string
		want    bool
		wantErr bool
	}{
		{`item.genre == "Science Fiction"`, true, false},
		{`item.author.startsWith("Frank") && item.score > 0.5`, true, false},
		{`rctx.user_id == "u2"`, false, false},
		{`"cf_fallback" in label && label.cf_fallback == "unknown_user"`, true, false},
		{`"keywords" in label`, false, false},
		{`label.keywords == "x"`, false, true},
		{`item.title`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := e.Eval(item, rctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Eval() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{`item.genre ==`, `1 + 2`, `"text"`} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) should fail", expr)
		}
	}
}

func TestEvalWithoutBookOrContext(t *testing.T) {
	e, err := Compile(`item.genre == "" && rctx.user_id == ""`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := e.Eval(&core.Item{ID: "x"}, nil)
	if err != nil || !got {
		t.Fatalf("Eval() = %v, %v", got, err)
	}
}
