package llm

import (
	"regexp"
	"strings"
)

// DefaultMaxKeywords 是关键词个数的默认值。
const DefaultMaxKeywords = 5

// 行首的列表标记：1. / 1) / - / * / •
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)

// ParseKeywords 把模型回复解析为关键词列表。
// 按行切分；只有一行时再按逗号切分。去掉列表标记、首尾引号与空白，
// 丢弃空项与重复项（忽略大小写），最多保留 max 个（max<=0 不限制）。
func ParseKeywords(text string, max int) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 1 && strings.Contains(nonEmpty[0], ",") {
		nonEmpty = strings.Split(nonEmpty[0], ",")
	}

	seen := make(map[string]struct{}, len(nonEmpty))
	out := make([]string, 0, len(nonEmpty))
	for _, l := range nonEmpty {
		kw := listMarker.ReplaceAllString(l, "")
		kw = strings.Trim(strings.TrimSpace(kw), `"'`+"`")
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
