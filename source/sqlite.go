package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rushteam/bookrec/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	genre       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS ratings (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      TEXT NOT NULL,
	book_id      TEXT NOT NULL,
	rating_value REAL NOT NULL,
	created_at   INTEGER NOT NULL DEFAULT (unixepoch())
);
CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id);
`

type sqliteConfig struct {
	busyTimeout int
	mkdirAll    bool
	migrate     bool
}

// SQLiteOption 配置 SQLite 数据源
type SQLiteOption func(*sqliteConfig)

// WithBusyTimeout 设置 busy_timeout（毫秒），默认 10000
func WithBusyTimeout(ms int) SQLiteOption {
	return func(c *sqliteConfig) { c.busyTimeout = ms }
}

// WithMigrate 打开后建表（表已存在时无操作）
func WithMigrate() SQLiteOption {
	return func(c *sqliteConfig) { c.migrate = true }
}

// WithoutMkdir 不自动创建数据库所在目录
func WithoutMkdir() SQLiteOption {
	return func(c *sqliteConfig) { c.mkdirAll = false }
}

// SQLiteSource 是基于 SQLite 的数据源，适合单机部署。
// 表结构：books(id, title, author, genre, description)，
// ratings(id, user_id, book_id, rating_value, created_at)，评分只追加，按 id 顺序读取。
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSQLite 打开（或创建）SQLite 数据库，WAL + busy_timeout 通过 DSN pragma 作用于每个连接。
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteSource, error) {
	cfg := sqliteConfig{busyTimeout: 10000, mkdirAll: true}
	for _, o := range opts {
		o(&cfg)
	}

	memory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")
	if cfg.mkdirAll && !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("source: sqlite mkdir: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := fmt.Sprintf("%s%s_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(%d)",
		path, sep, cfg.busyTimeout)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: sqlite open "+path, err)
	}
	if memory {
		// 每个 :memory: 连接都是独立的数据库
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteSource{db: db, path: path}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.migrate {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Migrate 建表。
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("source: sqlite migrate: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Name() string { return KindSQLite }

func (s *SQLiteSource) ListBooks(ctx context.Context) ([]core.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, genre, description FROM books ORDER BY rowid`)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: sqlite list books", err)
	}
	defer rows.Close()

	var (
		books   []core.Book
		skipped int
	)
	for rows.Next() {
		var id, title, author, genre, description string
		if err := rows.Scan(&id, &title, &author, &genre, &description); err != nil {
			return nil, fmt.Errorf("source: sqlite scan book: %w", err)
		}
		b, ok := toBook(id, title, author, genre, description)
		if !ok {
			skipped++
			continue
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: sqlite iterate books: %w", err)
	}
	logSkipped(ctx, s.Name(), "books", skipped)
	return books, nil
}

func (s *SQLiteSource) ListRatings(ctx context.Context) ([]core.RatingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, book_id, rating_value FROM ratings ORDER BY id`)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: sqlite list ratings", err)
	}
	defer rows.Close()

	var (
		ratings []core.RatingEntry
		skipped int
	)
	for rows.Next() {
		var user, book string
		var value float64
		if err := rows.Scan(&user, &book, &value); err != nil {
			return nil, fmt.Errorf("source: sqlite scan rating: %w", err)
		}
		e, ok := toRating(user, book, value)
		if !ok {
			skipped++
			continue
		}
		ratings = append(ratings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: sqlite iterate ratings: %w", err)
	}
	logSkipped(ctx, s.Name(), "ratings", skipped)
	return ratings, nil
}

// InsertBook 写入或覆盖一本书。
func (s *SQLiteSource) InsertBook(ctx context.Context, b core.Book) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, genre, description) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, author=excluded.author,
		 genre=excluded.genre, description=excluded.description`,
		b.ID, b.Title, b.Author, b.Genre, b.Description)
	if err != nil {
		return fmt.Errorf("source: sqlite insert book %s: %w", b.ID, err)
	}
	return nil
}

// InsertRating 追加一条评分。
func (s *SQLiteSource) InsertRating(ctx context.Context, e core.RatingEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ratings (user_id, book_id, rating_value) VALUES (?, ?, ?)`,
		e.UserID, e.BookID, e.Value)
	if err != nil {
		return fmt.Errorf("source: sqlite insert rating: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: sqlite ping "+s.path, err)
	}
	return nil
}

func (s *SQLiteSource) Close(_ context.Context) error {
	return s.db.Close()
}

var _ Source = (*SQLiteSource)(nil)
