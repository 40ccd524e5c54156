package scene

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// sortedKeys returns the map keys in ascending order so findings are
// reported deterministically.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
