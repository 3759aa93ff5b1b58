package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/bookrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译好的 CEL 布尔表达式，可被多个请求并发求值。
//
// 可用变量：
//   - item.id / item.title / item.author / item.genre / item.score
//   - label.<key>：召回链路写入的 Label 值（字符串）
//   - rctx.user_id / rctx.book_id / rctx.preferences
//
// 示例：
//   - `item.genre == "Horror"`
//   - `item.author == "Frank Herbert" && rctx.user_id == "u1"`
//   - `"cf_fallback" in label`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if ot := ast.OutputType(); !ot.IsExactType(cel.BoolType) && !ot.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %v", expr, ot)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

func (e *Expr) String() string { return e.src }

// Eval 对单个 Item 求值。访问不存在的 label key 会返回错误，
// 需要先用 `"key" in label` 判断存在性。
func (e *Expr) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", e.src, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T", e.src, out.Value())
	}
	return result, nil
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	it := map[string]any{
		"id":     item.ID,
		"score":  item.Score,
		"title":  "",
		"author": "",
		"genre":  "",
	}
	if item.Book != nil {
		it["title"] = item.Book.Title
		it["author"] = item.Book.Author
		it["genre"] = item.Book.Genre
	}

	r := map[string]any{
		"user_id":     "",
		"book_id":     "",
		"preferences": "",
	}
	if rctx != nil {
		r["user_id"] = rctx.UserID
		r["book_id"] = rctx.BookID
		r["preferences"] = rctx.Preferences
	}

	return map[string]any{
		"item":  it,
		"label": labels,
		"rctx":  r,
	}
}
