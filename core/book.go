package core

import "strings"

// Book 是语料中的一本书。ID 在入库时已经归一化（见 NormalizeID），
// 快照构建之后不可变。
type Book struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Genre       string `json:"genre" yaml:"genre"`
	Description string `json:"description" yaml:"description"`
}

// Content 返回用于文本向量化的内容：title、description、author、genre 以空格拼接。
// 缺失字段按空串处理。
func (b Book) Content() string {
	return strings.Join([]string{b.Title, b.Description, b.Author, b.Genre}, " ")
}

// RatingEntry 是一条历史评分，来源（显式评分或书评附带的评分）在归一化后不再区分。
type RatingEntry struct {
	UserID string  `json:"user_id" yaml:"user_id"`
	BookID string  `json:"book_id" yaml:"book_id"`
	Value  float64 `json:"rating" yaml:"rating"`
}
