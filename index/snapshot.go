package index

import (
	"time"

	"github.com/rushteam/bookrec/core"
)

// DefaultMaxFeatures 是词表上限的默认值。
const DefaultMaxFeatures = 5000

// Snapshot 是一次刷新产出的不可变索引：语料索引 + 评分矩阵。
// 请求只读快照，刷新时整体替换，不会观察到半成品。
type Snapshot struct {
	Corpus  *Corpus
	Matrix  *RatingMatrix
	Version uint64
	BuiltAt time.Time
}

// Options 控制快照构建。
type Options struct {
	// MaxFeatures 词表上限，<=0 使用 DefaultMaxFeatures
	MaxFeatures int
	// NGramMax n-gram 上限，<=0 使用 2（unigram+bigram）
	NGramMax int
}

func (o Options) vectorizer() *Vectorizer {
	maxFeatures := o.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	v := NewVectorizer(maxFeatures)
	if o.NGramMax > 0 {
		v.NGramMax = o.NGramMax
	}
	return v
}

// Build 从完整书目与评分集合构建新快照。
func Build(books []core.Book, ratings []core.RatingEntry, opts Options, version uint64) *Snapshot {
	return &Snapshot{
		Corpus:  newCorpus(books, opts.vectorizer()),
		Matrix:  NewRatingMatrix(ratings),
		Version: version,
		BuiltAt: time.Now(),
	}
}

// Empty 返回空快照：所有召回方法在其上都返回空结果。
func Empty() *Snapshot {
	return Build(nil, nil, Options{}, 0)
}

// Stats 是快照的概要统计。
type Stats struct {
	Version    uint64    `json:"version"`
	BuiltAt    time.Time `json:"built_at"`
	Books      int       `json:"books"`
	Vocabulary int       `json:"vocabulary"`
	Users      int       `json:"users"`
	RatedBooks int       `json:"rated_books"`
	Ratings    int       `json:"ratings"`
}

// Stats 返回快照概要。
func (s *Snapshot) Stats() Stats {
	return Stats{
		Version:    s.Version,
		BuiltAt:    s.BuiltAt,
		Books:      s.Corpus.Len(),
		Vocabulary: s.Corpus.VocabularySize(),
		Users:      s.Matrix.Len(),
		RatedBooks: s.Matrix.Cols(),
		Ratings:    s.Matrix.Entries(),
	}
}
