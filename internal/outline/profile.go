package outline

import (
	"sort"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DefaultMedianSize is the body size assumed for a document with no fragments.
const DefaultMedianSize = 12

// MedianSize returns the median font size across all fragments.
func MedianSize(frags []doctree.Fragment) float64 {
	if len(frags) == 0 {
		return DefaultMedianSize
	}
	sizes := make([]int, len(frags))
	for i, f := range frags {
		sizes[i] = f.Size
	}
	sort.Ints(sizes)

	mid := len(sizes) / 2
	if len(sizes)%2 == 1 {
		return float64(sizes[mid])
	}
	return float64(sizes[mid-1]+sizes[mid]) / 2
}
