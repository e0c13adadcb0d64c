package pkg

import "strings"

// UniqueNonEmpty 去除空白與重複，保留原順序
func UniqueNonEmpty(slice []string) []string {
	out := make([]string, 0, len(slice))
	seen := make(map[string]struct{}, len(slice))
	for _, v := range slice {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
