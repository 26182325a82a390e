package utils

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// 这些 key 下的字符串是正文
var textKeys = map[string]bool{"text": true, "insert": true}

// PlainText extracts readable text from an information post body. Bodies are
// editor documents serialized as JSON; anything else is treated as HTML.
func PlainText(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}

	var doc any
	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) &&
		json.Unmarshal([]byte(trimmed), &doc) == nil {
		parts := make([]string, 0, 16)
		collectText(doc, &parts)
		return normalizeSpace(strings.Join(parts, " "))
	}

	return normalizeSpace(html.UnescapeString(tagPattern.ReplaceAllString(trimmed, " ")))
}

func collectText(node any, parts *[]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			if s, ok := child.(string); ok && textKeys[k] {
				*parts = append(*parts, tagPattern.ReplaceAllString(s, " "))
			}
		}
		// 子节点顺序要稳定
		for _, k := range []string{"blocks", "content", "children", "ops", "data", "root"} {
			if child, ok := v[k]; ok {
				collectText(child, parts)
			}
		}
	case []any:
		for _, child := range v {
			collectText(child, parts)
		}
	}
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
