// Package merge collapses per-source result sets into one deduplicated,
// time-ordered list.
package merge

import (
	"sort"

	"github.com/TobiSchelling/NewsDesk/internal/news"
)

// Merge flattens the per-source slices in declaration order, drops
// later occurrences of an identity key, and sorts the survivors
// descending by publish time. Items without a timestamp sort as epoch,
// so they sink to the bottom and keep their relative input order.
//
// Declaration order, not arrival order, decides which duplicate
// survives, so output is deterministic for a fixed source list.
func Merge(perSource [][]news.Item) []news.Item {
	seen := make(map[string]struct{})
	var merged []news.Item

	for _, items := range perSource {
		for _, it := range items {
			key := it.IdentityKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, it)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	return merged
}
