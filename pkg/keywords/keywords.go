// Package keywords derives search tokens and a default reorder threshold
// from a product name.
package keywords

import (
	"strings"
)

// Generate lower-cases text, splits it on "/" and returns each chunk plus the
// whitespace-separated words inside it, deduplicated in first-seen order.
func Generate(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	for _, chunk := range strings.Split(text, "/") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		add(chunk)
		for _, part := range strings.Fields(chunk) {
			add(part)
		}
	}
	return out
}

// MinStock maps a keyword count to a reorder threshold. Names that match many
// device models get a higher floor.
func MinStock(keywordCount int) int {
	switch {
	case keywordCount <= 2:
		return 2
	case keywordCount <= 6:
		return 3
	case keywordCount <= 10:
		return 5
	default:
		return 10
	}
}
