package utils

import (
	"strconv"
	"strings"
)

func StrPtr(s string) *string {
	return &s
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ParseInt64 parses a positive decimal id.
func ParseInt64(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseBool accepts the truthy spellings sent by HTML forms and query strings.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// SplitIDs parses a comma separated id list, skipping blanks and invalid entries.
func SplitIDs(values ...string) []int64 {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id, ok := ParseInt64(part); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
