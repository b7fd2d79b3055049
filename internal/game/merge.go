package game

import (
	"slices"
	"sort"
)

// Merge combines owned and tracked Steam games with custom games. Steam games
// are de-duplicated by id with the tracked variant taking precedence; the
// result is sorted by Count, highest first.
func Merge(owned, tracked, custom []Game) []Game {
	byID := make(map[string]int, len(owned)+len(tracked))
	steam := make([]Game, 0, len(owned)+len(tracked))
	put := func(g Game) {
		id := g.Fields().ID
		if i, ok := byID[id]; ok {
			steam[i] = g
			return
		}
		byID[id] = len(steam)
		steam = append(steam, g)
	}
	for _, g := range owned {
		put(g)
	}
	for _, g := range tracked {
		put(g)
	}

	out := append(steam, custom...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fields().Count > out[j].Fields().Count
	})
	return out
}

// Equal reports whether two games are the same variant with identical fields.
func Equal(a, b Game) bool {
	return a.Kind() == b.Kind() && a.Fields() == b.Fields()
}

// EqualLists compares two game lists element by element.
func EqualLists(a, b []Game) bool {
	return slices.EqualFunc(a, b, Equal)
}
