package index

import (
	"math"
	"sort"

	"github.com/rushteam/bookrec/core"
)

// RatingMatrix 是稠密的 用户×书目 评分矩阵，未评分的格子为 0。
// 行列都按 ID 排序，保证同一输入构建出的矩阵完全一致。
type RatingMatrix struct {
	users   []string
	books   []string
	userIdx map[string]int
	bookIdx map[string]int
	rows    [][]float64
	entries int
}

type cellKey struct {
	user string
	book string
}

// NewRatingMatrix 由完整评分集合构建矩阵。
// 同一 (用户, 书目) 出现多次时以最后一条为准；缺少 ID 的评分被忽略。
func NewRatingMatrix(entries []core.RatingEntry) *RatingMatrix {
	cells := make(map[cellKey]float64, len(entries))
	userSet := make(map[string]struct{})
	bookSet := make(map[string]struct{})
	for _, e := range entries {
		if e.UserID == "" || e.BookID == "" {
			continue
		}
		cells[cellKey{e.UserID, e.BookID}] = e.Value
		userSet[e.UserID] = struct{}{}
		bookSet[e.BookID] = struct{}{}
	}

	m := &RatingMatrix{
		users:   sortedKeys(userSet),
		books:   sortedKeys(bookSet),
		entries: len(cells),
	}
	m.userIdx = indexOf(m.users)
	m.bookIdx = indexOf(m.books)
	m.rows = make([][]float64, len(m.users))
	for i := range m.rows {
		m.rows[i] = make([]float64, len(m.books))
	}
	for k, v := range cells {
		m.rows[m.userIdx[k.user]][m.bookIdx[k.book]] = v
	}
	return m
}

// Len 返回用户数（行数）。
func (m *RatingMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.users)
}

// Cols 返回书目数（列数）。
func (m *RatingMatrix) Cols() int {
	if m == nil {
		return 0
	}
	return len(m.books)
}

// Entries 返回去重后的评分条数。
func (m *RatingMatrix) Entries() int {
	if m == nil {
		return 0
	}
	return m.entries
}

// UserIndex 返回用户所在行。
func (m *RatingMatrix) UserIndex(userID string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.userIdx[userID]
	return i, ok
}

// User 返回第 i 行的用户 ID。
func (m *RatingMatrix) User(i int) string { return m.users[i] }

// BookID 返回第 j 列的书目 ID。
func (m *RatingMatrix) BookID(j int) string { return m.books[j] }

// Row 返回第 i 行，调用方不得修改。
func (m *RatingMatrix) Row(i int) []float64 { return m.rows[i] }

// Rating 返回用户对书目的评分，未评分或不存在返回 0。
func (m *RatingMatrix) Rating(userID, bookID string) float64 {
	if m == nil {
		return 0
	}
	i, ok := m.userIdx[userID]
	if !ok {
		return 0
	}
	j, ok := m.bookIdx[bookID]
	if !ok {
		return 0
	}
	return m.rows[i][j]
}

// Rated 表示用户是否“读过”该书：评分 > 0。
func (m *RatingMatrix) Rated(userID, bookID string) bool {
	return m.Rating(userID, bookID) > 0
}

// Cosine 计算两个稠密向量的余弦相似度，任一为零向量时返回 0。
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
