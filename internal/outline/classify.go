package outline

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// StyleSizeRatio is how much larger than the median a fragment must be to
// count as a heading on size alone.
const StyleSizeRatio = 1.15

// numberingPattern matches a leading outline number such as "2", "2.1" or "2.1.3.".
var numberingPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(\.?)\s+(.+)$`)

// Classification holds the two heading sets found among the candidates.
type Classification struct {
	Stylistic []doctree.OutlineItem // Grouped by style, document order within a group
	Numbered  []doctree.OutlineItem // Candidate order
}

type styleKey struct {
	size float64
	bold bool
}

// MatchNumbered returns the outline item for a numbered heading.
func MatchNumbered(f doctree.Fragment) (doctree.OutlineItem, bool) {
	m := numberingPattern.FindStringSubmatch(strings.TrimSpace(f.Text))
	if m == nil {
		return doctree.OutlineItem{}, false
	}
	numbering, trailing, rest := m[1], m[2], strings.TrimSpace(m[3])
	return doctree.OutlineItem{
		Level: doctree.LevelFor(strings.Count(numbering, ".") + 1),
		Text:  numbering + trailing + " " + rest,
		Page:  f.Page,
	}, true
}

// Classify splits candidates into numbered and stylistic headings.
// Stylistic items whose text equals title are left out.
func Classify(cands []doctree.Fragment, medianSize float64, title string) Classification {
	var c Classification

	var keys []styleKey
	groups := make(map[styleKey][]doctree.Fragment)

	for _, f := range cands {
		if item, ok := MatchNumbered(f); ok {
			c.Numbered = append(c.Numbered, item)
			continue
		}
		size := float64(f.Size)
		if size > medianSize*StyleSizeRatio || (f.Bold && size >= medianSize) {
			k := styleKey{size: math.Round(size*100) / 100, bold: f.Bold}
			if _, seen := groups[k]; !seen {
				keys = append(keys, k)
			}
			groups[k] = append(groups[k], f)
		}
	}

	ranked := make([]styleKey, len(keys))
	copy(ranked, keys)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].size > ranked[j].size })
	levels := make(map[styleKey]doctree.Level, len(ranked))
	for i, k := range ranked {
		levels[k] = doctree.LevelFor(i + 1)
	}

	for _, k := range keys {
		for _, f := range groups[k] {
			if f.Text == title {
				continue
			}
			c.Stylistic = append(c.Stylistic, doctree.OutlineItem{
				Level: levels[k],
				Text:  f.Text,
				Page:  f.Page,
			})
		}
	}
	return c
}
