package utils

import "strings"

// 标签来源。
const (
	SourceRecall = "recall"
	SourceLLM    = "llm"
	SourceFilter = "filter"
	SourceRerank = "rerank"
)

// Label 是挂在推荐结果上的解释信息，只在内部链路与日志中使用，不进入 API 响应。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// NewLabel 创建标签。
func NewLabel(source, value string) Label {
	return Label{Value: value, Source: source}
}

// RecallLabel 创建召回阶段的标签。
func RecallLabel(value string) Label {
	return Label{Value: value, Source: SourceRecall}
}

// Values 返回合并后的各个取值。
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积，已有的取值与来源不重复追加。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	if !contains(existing.Value, "|", incoming.Value) {
		merged.Value = existing.Value + "|" + incoming.Value
	}
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "" || contains(existing.Source, ",", incoming.Source):
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

func contains(joined, sep, v string) bool {
	for _, part := range strings.Split(joined, sep) {
		if part == v {
			return true
		}
	}
	return false
}
