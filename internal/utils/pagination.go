// Package utils contains small shared helpers used across handlers and
// services.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer and returns def when s is empty
// or not a valid number. Used for query-parameter parsing.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
