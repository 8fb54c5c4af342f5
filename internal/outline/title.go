package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	// UntitledTitle is used when page 1 has no bold text.
	UntitledTitle = "Untitled Document"

	// MinTitleChars is the trimmed length below which a title is considered weak.
	MinTitleChars = 5

	// MaxFallbackTitleParts caps how many same-size bold fragments the
	// fallback detector will join before giving up on them.
	MaxFallbackTitleParts = 5
)

// largestBoldFirstPage returns the texts of the bold page-1 fragments that
// share the largest bold page-1 size, in document order.
func largestBoldFirstPage(frags []doctree.Fragment) []string {
	maxSize := 0
	found := false
	for _, f := range frags {
		if f.Page != 1 || !f.Bold {
			continue
		}
		if !found || f.Size > maxSize {
			maxSize = f.Size
			found = true
		}
	}
	if !found {
		return nil
	}

	var parts []string
	for _, f := range frags {
		if f.Page == 1 && f.Bold && f.Size == maxSize {
			parts = append(parts, f.Text)
		}
	}
	return parts
}

// DetectTitle joins the largest bold fragments on the first page.
// A title rendered across several sizes only keeps its largest part.
func DetectTitle(frags []doctree.Fragment) string {
	parts := largestBoldFirstPage(frags)
	if parts == nil {
		return UntitledTitle
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// FallbackTitle derives a title the same way as DetectTitle but falls back
// to the first non-empty fragment when no usable bold text exists.
func FallbackTitle(frags []doctree.Fragment) string {
	parts := largestBoldFirstPage(frags)
	if len(parts) > 0 && len(parts) <= MaxFallbackTitleParts {
		if t := strings.TrimSpace(strings.Join(parts, " ")); t != "" {
			return t
		}
	}
	for _, f := range frags {
		if t := strings.TrimSpace(f.Text); t != "" {
			return t
		}
	}
	return ""
}

// IsWeakTitle reports whether a title is a placeholder or too short to trust.
func IsWeakTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "untitled" || t == "untitled document" {
		return true
	}
	return utf8.RuneCountInString(t) < MinTitleChars
}

// ResolveTitle upgrades a weak primary title with the fallback, if any.
func ResolveTitle(primary, fallback string) string {
	if IsWeakTitle(primary) && fallback != "" {
		return fallback
	}
	return primary
}
