// Package prefix implements the case-insensitive prefix resolution shared by
// command, parameter and remote lookups.
package prefix

import (
	"sort"
	"strings"
)

// Match returns every name for which typed is a case-insensitive prefix,
// sorted. When exactWins is set and one name equals typed (ignoring case),
// only that name is returned.
func Match(names []string, typed string, exactWins bool) []string {
	folded := strings.ToLower(typed)
	var matches []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if exactWins && lower == folded {
			return []string{name}
		}
		if strings.HasPrefix(lower, folded) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches
}
