package core

import "github.com/rushteam/bookrec/pkg/utils"

// Item 是召回链路内部的承载结构：书目、内部分数、解释标签。
// Score 的含义随召回方法变化（相似度 / 预测评分 / 相关度），只用于排序与日志，
// 对外输出前必须经 ToRecommendation 去掉。
type Item struct {
	ID     string
	Score  float64
	Book   *Book
	Labels map[string]utils.Label
}

// NewItem 基于书目创建 Item，ID 取书目的规范 ID。
func NewItem(book *Book, score float64) *Item {
	it := &Item{
		Score:  score,
		Book:   book,
		Labels: make(map[string]utils.Label),
	}
	if book != nil {
		it.ID = book.ID
	}
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Recommendation 是对外暴露的推荐结果，只包含书目的展示字段。
type Recommendation struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// ToRecommendation 把内部 Item 映射为对外结果。
func ToRecommendation(it *Item) Recommendation {
	rec := Recommendation{BookID: it.ID}
	if it.Book != nil {
		rec.Title = it.Book.Title
		rec.Author = it.Book.Author
		rec.Genre = it.Book.Genre
	}
	return rec
}

// ToRecommendations 批量映射，nil 的 Item 被跳过；结果永不为 nil。
func ToRecommendations(items []*Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, ToRecommendation(it))
	}
	return out
}

// Scores 提取分数序列，用于日志。
func Scores(items []*Item) []float64 {
	out := make([]float64, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it.Score)
		}
	}
	return out
}
