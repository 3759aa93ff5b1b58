package index

import "github.com/rushteam/bookrec/core"

// Corpus 是书目语料的只读索引：书目数组、TF-IDF 行向量、id→下标映射，
// 三者在 NewCorpus 中一次性构建，第 i 行向量对应第 i 本书。
type Corpus struct {
	books []core.Book
	rows  []SparseVector
	byID  map[string]int
	vec   *Vectorizer
}

// NewCorpus 基于书目构建语料索引。重复 ID 以首次出现为准。
func NewCorpus(books []core.Book, maxFeatures int) *Corpus {
	return newCorpus(books, NewVectorizer(maxFeatures))
}

func newCorpus(books []core.Book, vec *Vectorizer) *Corpus {
	c := &Corpus{
		books: make([]core.Book, len(books)),
		byID:  make(map[string]int, len(books)),
		vec:   vec,
	}
	copy(c.books, books)

	docs := make([]string, len(c.books))
	for i, b := range c.books {
		if _, dup := c.byID[b.ID]; !dup && b.ID != "" {
			c.byID[b.ID] = i
		}
		docs[i] = b.Content()
	}
	c.rows = c.vec.Fit(docs)
	return c
}

// Len 返回书目数量。
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.books)
}

// Book 返回第 i 本书，指向快照内部，调用方不得修改。
func (c *Corpus) Book(i int) *core.Book {
	return &c.books[i]
}

// Lookup 按 core.IDCandidates 的顺序解析请求侧 ID，返回书目下标。
func (c *Corpus) Lookup(raw string) (int, bool) {
	if c == nil {
		return 0, false
	}
	for _, id := range core.IDCandidates(raw) {
		if i, ok := c.byID[id]; ok {
			return i, true
		}
	}
	return 0, false
}

// IndexOf 按规范 ID 精确查找。
func (c *Corpus) IndexOf(id string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.byID[id]
	return i, ok
}

// SimilarTo 返回第 i 本书与全部书目的余弦相似度（行向量已归一化，点积即余弦）。
func (c *Corpus) SimilarTo(i int) []float64 {
	sims := make([]float64, len(c.rows))
	for j := range c.rows {
		sims[j] = c.rows[i].Dot(c.rows[j])
	}
	return sims
}

// Query 把任意文本投影到语料空间，返回与全部书目的余弦相似度。
func (c *Corpus) Query(text string) []float64 {
	sims := make([]float64, c.Len())
	if c.Len() == 0 {
		return sims
	}
	q := c.vec.Transform(text)
	if q.Len() == 0 {
		return sims
	}
	for j := range c.rows {
		sims[j] = q.Dot(c.rows[j])
	}
	return sims
}

// VocabularySize 返回拟合后的词表大小。
func (c *Corpus) VocabularySize() int {
	if c == nil {
		return 0
	}
	return c.vec.VocabularySize()
}

// Vectorizer 返回已拟合的向量化器。
func (c *Corpus) Vectorizer() *Vectorizer { return c.vec }
