package service

import (
	"regexp"
	"strconv"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Render 把 {{key}} 替换为 vars[key]，缺失的 key 替换为空串
func Render(tpl string, vars map[string]string) string {
	if tpl == "" {
		return ""
	}
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		if len(sub) < 2 {
			return ""
		}
		return vars[sub[1]]
	})
}

// renderVars 事件数据 + 当前聚合计数
func renderVars(data map[string]string, count int) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["count"] = strconv.Itoa(count)
	return out
}
