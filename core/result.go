package core

// 召回方法名称，同时也是 HybridResult 的 key。
const (
	MethodContentBased  = "content_based"
	MethodCollaborative = "collaborative"
	MethodAIEnhanced    = "ai_enhanced"
)

// Methods 按去重优先级排列：内容 > 协同 > 关键词扩展。
var Methods = []string{MethodContentBased, MethodCollaborative, MethodAIEnhanced}

// HybridResult 是混合推荐的对外结果：方法名 → 有序推荐列表。
// 三个 key 始终存在，缺少输入的方法对应空列表。
type HybridResult map[string][]Recommendation

// NewHybridResult 返回三个 key 都已填充为空列表的结果。
func NewHybridResult() HybridResult {
	res := make(HybridResult, len(Methods))
	for _, m := range Methods {
		res[m] = []Recommendation{}
	}
	return res
}

// Merge 按 book id 去重后合并为单一列表，先出现者保留，顺序为 Methods。
func (r HybridResult) Merge() []Recommendation {
	seen := make(map[string]struct{})
	out := make([]Recommendation, 0, r.Total())
	for _, m := range Methods {
		for _, rec := range r[m] {
			if _, ok := seen[rec.BookID]; ok {
				continue
			}
			seen[rec.BookID] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

// Total 返回各方法结果条数之和（未去重）。
func (r HybridResult) Total() int {
	n := 0
	for _, recs := range r {
		n += len(recs)
	}
	return n
}
