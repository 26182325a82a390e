package utils

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

func Substr(s string, start int, length int) string {
	runes := []rune(s)
	strLen := utf8.RuneCountInString(s)

	if start < 0 || start >= strLen || length <= 0 {
		return ""
	}

	substrEnd := start + length
	if substrEnd > strLen {
		substrEnd = strLen
	}

	return string(runes[start:substrEnd])
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Or returns s, or def when s is blank.
func Or(s, def string) string {
	if IsBlank(s) {
		return def
	}
	return s
}

func ConvertInt64SliceToStringSlice(arr []int64) []string {
	res := make([]string, 0, len(arr))
	for _, id := range arr {
		res = append(res, strconv.FormatInt(id, 10))
	}
	return res
}

func SortedInt64s(set map[int64]struct{}) []int64 {
	res := make([]int64, 0, len(set))
	for id := range set {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
