package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// 至少两个词字符组成一个 token。
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// SparseVector 是按 Indices 升序存储的稀疏向量。
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len 返回非零项个数。
func (v SparseVector) Len() int { return len(v.Indices) }

// Norm 返回 L2 范数。
func (v SparseVector) Norm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return math.Sqrt(s)
}

// Dot 计算两个稀疏向量的点积（归并 Indices）。
func (v SparseVector) Dot(o SparseVector) float64 {
	var s float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			s += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return s
}

// Vectorizer 是 TF-IDF 向量化器。
//
// 分词：小写，连续 >=2 个词字符为一个 token，去停用词后生成 [NGramMin, NGramMax] 的 n-gram。
// 词表：按语料总词频取前 MaxFeatures 个（同频按字典序），再按字典序编号。
// 权重：原始词频 × 平滑 idf，idf = ln((1+n)/(1+df)) + 1，行向量 L2 归一化。
type Vectorizer struct {
	MaxFeatures int
	NGramMin    int
	NGramMax    int
	StopWords   map[string]struct{}

	vocab map[string]int
	terms []string
	idf   []float64
}

// NewVectorizer 返回带英文停用词、unigram+bigram 的向量化器。
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{
		MaxFeatures: maxFeatures,
		NGramMin:    1,
		NGramMax:    2,
		StopWords:   EnglishStopWords,
	}
}

// Analyze 把文本切分为 n-gram 序列。
func (v *Vectorizer) Analyze(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := v.StopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	minN, maxN := v.NGramMin, v.NGramMax
	if minN <= 0 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	if minN == 1 && maxN == 1 {
		return tokens
	}

	var grams []string
	for n := minN; n <= maxN; n++ {
		if n == 1 {
			grams = append(grams, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// Fit 在 docs 上拟合词表与 idf，并返回每篇文档的归一化向量。
// 语料没有任何有效 token 时词表为空，所有向量为零向量。
func (v *Vectorizer) Fit(docs []string) []SparseVector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		tf := make(map[string]int)
		for _, g := range v.Analyze(doc) {
			tf[g]++
		}
		for g, c := range tf {
			df[g]++
			total[g] += c
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(total))
	for g := range total {
		terms = append(terms, g)
	}
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, g := range terms {
		v.vocab[g] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[g]))) + 1
	}

	rows := make([]SparseVector, len(docs))
	for i, tf := range counts {
		rows[i] = v.weigh(tf)
	}
	return rows
}

// Transform 用已拟合的词表把文本投影为归一化向量，词表外的 n-gram 被忽略。
func (v *Vectorizer) Transform(text string) SparseVector {
	if len(v.vocab) == 0 {
		return SparseVector{}
	}
	tf := make(map[string]int)
	for _, g := range v.Analyze(text) {
		tf[g]++
	}
	return v.weigh(tf)
}

// VocabularySize 返回词表大小。
func (v *Vectorizer) VocabularySize() int { return len(v.terms) }

// Terms 返回按编号排列的词表。
func (v *Vectorizer) Terms() []string { return v.terms }

// IDF 返回词项的 idf，不在词表中返回 (0, false)。
func (v *Vectorizer) IDF(term string) (float64, bool) {
	i, ok := v.vocab[term]
	if !ok {
		return 0, false
	}
	return v.idf[i], true
}

func (v *Vectorizer) weigh(tf map[string]int) SparseVector {
	vec := SparseVector{}
	for g := range tf {
		idx, ok := v.vocab[g]
		if !ok {
			continue
		}
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	vec.Values = make([]float64, len(vec.Indices))
	for k, idx := range vec.Indices {
		vec.Values[k] = float64(tf[v.terms[idx]]) * v.idf[idx]
	}
	if norm := vec.Norm(); norm > 0 {
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}
