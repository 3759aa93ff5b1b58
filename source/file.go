package source

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/bookrec/core"
)

// FileSource 从 YAML 文件读取书目与评分，用于本地开发、演示和测试。
//
//	books:
//	  - id: b1
//	    title: Dune
//	    author: Frank Herbert
//	    genre: Science Fiction
//	    description: desert planet
//	ratings:
//	  - user_id: u1
//	    book_id: b1
//	    rating: 5
//
// 每次 ListBooks 都会重新读取文件，随后的 ListRatings 返回同一次读取的评分。
type FileSource struct {
	mu      sync.RWMutex
	path    string
	books   []core.Book
	ratings []core.RatingEntry
	skipped int
}

type fileDoc struct {
	Books []struct {
		ID          any    `yaml:"id"`
		Title       string `yaml:"title"`
		Author      string `yaml:"author"`
		Genre       string `yaml:"genre"`
		Description string `yaml:"description"`
	} `yaml:"books"`
	Ratings []struct {
		UserID      any `yaml:"user_id"`
		BookID      any `yaml:"book_id"`
		Rating      any `yaml:"rating"`
		RatingValue any `yaml:"rating_value"`
	} `yaml:"ratings"`
}

// LoadFile 读取并解析 YAML 文件。
func LoadFile(path string) (*FileSource, error) {
	f := &FileSource{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload 重新读取文件，失败时保留之前的数据。
func (f *FileSource) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: read "+f.path, err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.WrapDomainError(core.ModuleSource, core.ErrorCodeInvalidInput, fmt.Sprintf("source: parse %s", f.path), err)
	}

	skipped := 0
	books := make([]core.Book, 0, len(doc.Books))
	for _, b := range doc.Books {
		book, ok := toBook(b.ID, b.Title, b.Author, b.Genre, b.Description)
		if !ok {
			skipped++
			continue
		}
		books = append(books, book)
	}
	ratings := make([]core.RatingEntry, 0, len(doc.Ratings))
	for _, r := range doc.Ratings {
		e, ok := toRating(r.UserID, r.BookID, r.Rating, r.RatingValue)
		if !ok {
			skipped++
			continue
		}
		ratings = append(ratings, e)
	}
	f.mu.Lock()
	f.books, f.ratings, f.skipped = books, ratings, skipped
	f.mu.Unlock()
	return nil
}

func (f *FileSource) Name() string { return KindFile }

func (f *FileSource) ListBooks(ctx context.Context) ([]core.Book, error) {
	if err := f.Reload(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	logSkipped(ctx, f.Name(), "records", f.skipped)
	out := make([]core.Book, len(f.books))
	copy(out, f.books)
	return out, nil
}

func (f *FileSource) ListRatings(_ context.Context) ([]core.RatingEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RatingEntry, len(f.ratings))
	copy(out, f.ratings)
	return out, nil
}

func (f *FileSource) Ping(_ context.Context) error {
	if _, err := os.Stat(f.path); err != nil {
		return core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: stat "+f.path, err)
	}
	return nil
}

func (f *FileSource) Close(_ context.Context) error { return nil }

var _ Source = (*FileSource)(nil)
