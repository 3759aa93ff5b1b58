package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rushteam/bookrec/pkg/conv"
)

var (
	objectIDHex    = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	objectIDString = regexp.MustCompile(`^ObjectI[dD]\(\s*["']?([0-9a-fA-F]{24})["']?\s*\)$`)
)

// hexer 是 ObjectId 一类结构化 ID 的最小接口（bson primitive.ObjectID 满足）。
type hexer interface {
	Hex() string
}

// NormalizeID 把数据源里的任意 ID 表示转换为唯一的规范字符串。
//
// 规则：
//   - 结构化 ObjectId（实现 Hex()）→ 小写 hex
//   - 字符串 → 去空白；ObjectID("…") 字符串形式解包为小写 hex；24 位 hex 统一为小写
//   - 整数/浮点数 → 十进制文本
//   - fmt.Stringer → 按字符串规则处理
//
// 结果为空时返回 ("", false)。
func NormalizeID(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	var s string
	switch val := v.(type) {
	case hexer:
		s = strings.ToLower(val.Hex())
	case string:
		s = normalizeString(val)
	default:
		if str, ok := conv.ToString(v); ok {
			s = normalizeString(str)
		} else if st, ok := v.(fmt.Stringer); ok {
			s = normalizeString(st.String())
		}
	}
	if s == "" {
		return "", false
	}
	return s, true
}

func normalizeString(raw string) string {
	s := strings.TrimSpace(raw)
	if m := objectIDString.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}
	if objectIDHex.MatchString(s) {
		return strings.ToLower(s)
	}
	return s
}

// IDCandidates 返回请求侧 ID 的查找顺序，第一个命中者胜出：
//  1. 原始字符串（去空白）
//  2. ObjectId 的 hex 形式（24 位 hex 统一小写）
//  3. ObjectID("…") 字符串形式解包后的 hex
//
// 重复候选只保留一次。
func IDCandidates(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	out := []string{s}
	add := func(c string) {
		for _, e := range out {
			if e == c {
				return
			}
		}
		out = append(out, c)
	}
	if objectIDHex.MatchString(s) {
		add(strings.ToLower(s))
	}
	if m := objectIDString.FindStringSubmatch(s); m != nil {
		add(strings.ToLower(m[1]))
	}
	return out
}
