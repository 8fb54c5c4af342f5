package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	// VerticalTolerance is how far below a heading's bottom edge, in page
	// units, a fragment may start and still count as section text.
	VerticalTolerance = 50

	// MaxExcerptChars caps an excerpt before EllipsisMarker is appended.
	MaxExcerptChars = 400

	EllipsisMarker = "..."
)

// Excerpt joins the same-page fragments that start strictly below heading
// and within VerticalTolerance of its bottom edge, in list order.
func Excerpt(heading doctree.Fragment, frags []doctree.Fragment) string {
	var parts []string
	for _, f := range frags {
		if f.Page != heading.Page {
			continue
		}
		gap := f.BBox.Y0 - heading.BBox.Y1
		if gap > 0 && gap < VerticalTolerance {
			parts = append(parts, f.Text)
		}
	}
	return truncateRunes(strings.Join(parts, " "), MaxExcerptChars)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + EllipsisMarker
}
