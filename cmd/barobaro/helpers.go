package main

import (
	"fmt"

	"barobaro/internal/domain"
)

// parseRefs converts Workshop IDs or page URLs to IDs, keeping order and
// dropping duplicates
func parseRefs(args []string) ([]domain.WorkshopID, error) {
	seen := make(map[domain.WorkshopID]bool, len(args))
	ids := make([]domain.WorkshopID, 0, len(args))
	for _, arg := range args {
		id, err := domain.ParseWorkshopRef(arg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// orDash returns s, or "-" when s is empty
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
