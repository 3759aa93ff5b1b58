package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rushteam/bookrec/core"
)

// MongoConfig 是 MongoDB 数据源的连接配置。
type MongoConfig struct {
	URI               string
	Database          string
	BooksCollection   string
	RatingsCollection string
	// ReviewsCollection 为空时不读取书评评分
	ReviewsCollection string
	Timeout           time.Duration
}

func (c *MongoConfig) withDefaults() {
	if c.Database == "" {
		c.Database = "smartlibrary"
	}
	if c.BooksCollection == "" {
		c.BooksCollection = "books"
	}
	if c.RatingsCollection == "" {
		c.RatingsCollection = "ratings"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// MongoSource 从 MongoDB 读取书目和评分。
// 评分有两个来源：ratings 集合（rating_value）与 reviews 集合（rating）。
// 先读 reviews 再读 ratings，同一 (user, book) 以显式评分为准。
type MongoSource struct {
	client *mongo.Client
	cfg    MongoConfig
}

type mongoBook struct {
	ID          any    `bson:"_id"`
	Title       string `bson:"title"`
	Author      string `bson:"author"`
	Genre       string `bson:"genre"`
	Description string `bson:"description"`
}

type mongoRating struct {
	UserID      any `bson:"user_id"`
	BookID      any `bson:"book_id"`
	RatingValue any `bson:"rating_value"`
	Rating      any `bson:"rating"`
}

// OpenMongo 建立连接并 ping 主节点，失败返回 UNAVAILABLE。
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	cfg.withDefaults()
	if cfg.URI == "" {
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeInvalidInput, "source: mongo uri is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: mongo connect", err)
	}

	s := &MongoSource{client: client, cfg: cfg}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoSource) Name() string { return KindMongo }

func (s *MongoSource) collection(name string) *mongo.Collection {
	return s.client.Database(s.cfg.Database).Collection(name)
}

func (s *MongoSource) ListBooks(ctx context.Context) ([]core.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cur, err := s.collection(s.cfg.BooksCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: mongo find books", err)
	}
	var raw []mongoBook
	if err := cur.All(ctx, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: mongo decode books", err)
	}
	books, skipped := convertBooks(raw)
	logSkipped(ctx, s.Name(), "books", skipped)
	return books, nil
}

func (s *MongoSource) ListRatings(ctx context.Context) ([]core.RatingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var out []core.RatingEntry
	if s.cfg.ReviewsCollection != "" {
		reviews, err := s.readRatings(ctx, s.cfg.ReviewsCollection)
		if err != nil {
			return nil, err
		}
		out = append(out, reviews...)
	}
	ratings, err := s.readRatings(ctx, s.cfg.RatingsCollection)
	if err != nil {
		return nil, err
	}
	return append(out, ratings...), nil
}

func (s *MongoSource) readRatings(ctx context.Context, coll string) ([]core.RatingEntry, error) {
	filter := bson.D{
		{Key: "user_id", Value: bson.D{{Key: "$exists", Value: true}}},
		{Key: "book_id", Value: bson.D{{Key: "$exists", Value: true}}},
	}
	cur, err := s.collection(coll).Find(ctx, filter)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable,
			fmt.Sprintf("source: mongo find %s", coll), err)
	}
	var raw []mongoRating
	if err := cur.All(ctx, &raw); err != nil {
		return nil, core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable,
			fmt.Sprintf("source: mongo decode %s", coll), err)
	}
	entries, skipped := convertRatings(raw)
	logSkipped(ctx, s.Name(), coll, skipped)
	return entries, nil
}

func (s *MongoSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return core.WrapDomainError(core.ModuleSource, core.ErrorCodeUnavailable, "source: mongo ping", err)
	}
	return nil
}

func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func convertBooks(raw []mongoBook) ([]core.Book, int) {
	books := make([]core.Book, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		b, ok := toBook(r.ID, r.Title, r.Author, r.Genre, r.Description)
		if !ok {
			skipped++
			continue
		}
		books = append(books, b)
	}
	return books, skipped
}

func convertRatings(raw []mongoRating) ([]core.RatingEntry, int) {
	entries := make([]core.RatingEntry, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		e, ok := toRating(r.UserID, r.BookID, r.RatingValue, r.Rating)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped
}

var _ Source = (*MongoSource)(nil)
