package middleware

import "strconv"

// ValidateLimit parses a ?limit= value, falling back to def and capping at 100.
func ValidateLimit(raw string, def int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
