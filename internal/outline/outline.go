// Package outline turns a flat list of styled fragments into a leveled
// document outline.
//
// The pipeline runs in fixed order: median size, title, candidate filter,
// classification (numbered and stylistic), then assembly.
package outline

import (
	"sort"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// EmptyTitle is the title reported for a document without fragments.
const EmptyTitle = "Empty Document"

// Assemble merges stylistic and numbered items, orders them by page and
// drops repeated texts.
func Assemble(c Classification) []doctree.OutlineItem {
	items := make([]doctree.OutlineItem, 0, len(c.Stylistic)+len(c.Numbered))
	items = append(items, c.Stylistic...)
	items = append(items, c.Numbered...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Page < items[j].Page })

	seen := make(map[string]bool, len(items))
	out := make([]doctree.OutlineItem, 0, len(items))
	for _, it := range items {
		if seen[it.Text] {
			continue
		}
		seen[it.Text] = true
		out = append(out, it)
	}
	return out
}

// Extract runs the heading pipeline over a document's fragments.
func Extract(frags []doctree.Fragment) doctree.Outline {
	if len(frags) == 0 {
		return doctree.Outline{Title: EmptyTitle, Items: []doctree.OutlineItem{}}
	}

	title := DetectTitle(frags)
	median := MedianSize(frags)
	cands := FilterCandidates(frags)

	return doctree.Outline{
		Title: title,
		Items: Assemble(Classify(cands, median, title)),
	}
}

// Build is Extract plus the fallback title upgrade used for published outlines.
// Headings are still filtered against the primary title.
func Build(frags []doctree.Fragment) doctree.Outline {
	out := Extract(frags)
	if len(frags) == 0 {
		return out
	}
	out.Title = ResolveTitle(out.Title, FallbackTitle(frags))
	return out
}
