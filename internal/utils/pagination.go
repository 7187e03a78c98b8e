// Package utils holds small helpers with no domain dependencies.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or
// not a valid integer. Used for query parameters like page and
// recipes_limit where malformed input falls back to the default.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
