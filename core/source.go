package core

import "context"

// BookSource 提供完整书目语料，每次刷新全量读取。
type BookSource interface {
	ListBooks(ctx context.Context) ([]Book, error)
}

// RatingSource 提供完整评分集合，每次刷新全量读取。
type RatingSource interface {
	ListRatings(ctx context.Context) ([]RatingEntry, error)
}

// KeywordExpander 把自由文本偏好扩展为若干检索关键词（通常由 LLM 实现）。
// 实现不保证返回条数，调用方负责截断。
type KeywordExpander interface {
	ExpandPreferences(ctx context.Context, text string) ([]string, error)
}

// KeywordExpanderFunc 是 KeywordExpander 的函数适配器。
type KeywordExpanderFunc func(ctx context.Context, text string) ([]string, error)

func (f KeywordExpanderFunc) ExpandPreferences(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}
