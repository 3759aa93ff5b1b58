// Package source 提供书目与评分数据源：MongoDB、SQLite、YAML 文件。
// 所有数据源在读取时把 ID 归一化为规范字符串，缺少可用 ID 的记录被跳过。
package source

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/conv"
)

// 数据源类型，与配置项 source.kind 对应。
const (
	KindMongo  = "mongo"
	KindSQLite = "sqlite"
	KindFile   = "file"
)

// Source 是一个完整的数据源：书目 + 评分，外加连接管理。
// 由调用方在启动时创建、注入引擎，并在退出时关闭。
type Source interface {
	core.BookSource
	core.RatingSource

	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// toBook 把原始字段转换为 Book，ID 不可用时返回 false。
func toBook(id any, title, author, genre, description string) (core.Book, bool) {
	canonical, ok := core.NormalizeID(id)
	if !ok {
		return core.Book{}, false
	}
	return core.Book{
		ID:          canonical,
		Title:       title,
		Author:      author,
		Genre:       genre,
		Description: description,
	}, true
}

// toRating 把原始字段转换为 RatingEntry；values 按顺序取第一个可转为数字的值。
func toRating(user, book any, values ...any) (core.RatingEntry, bool) {
	u, ok := core.NormalizeID(user)
	if !ok {
		return core.RatingEntry{}, false
	}
	b, ok := core.NormalizeID(book)
	if !ok {
		return core.RatingEntry{}, false
	}
	for _, v := range values {
		if f, ok := conv.ToFloat64(v); ok {
			return core.RatingEntry{UserID: u, BookID: b, Value: f}, true
		}
	}
	return core.RatingEntry{}, false
}

func logSkipped(ctx context.Context, src, kind string, skipped int) {
	if skipped == 0 {
		return
	}
	zerolog.Ctx(ctx).Warn().
		Str("source", src).
		Str("kind", kind).
		Int("skipped", skipped).
		Msg("records without usable id or rating skipped")
}
