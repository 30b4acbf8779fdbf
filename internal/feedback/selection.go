package feedback

import (
	"strconv"
	"strings"
)

// ParseSelection parses a comma-separated list of 1-based indices.
//
// Tokens are trimmed. Non-numeric and out-of-range tokens are dropped, duplicates collapse
// to their first occurrence, and the input order is preserved. The result is never nil.
func ParseSelection(raw string, max int) []int {
	selected := []int{}
	if strings.TrimSpace(raw) == "" {
		return selected
	}
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > max || seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, n)
	}
	return selected
}
