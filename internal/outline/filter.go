package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

const (
	// MaxHeadingWords is the word count above which a fragment reads as a sentence.
	MaxHeadingWords = 15

	// MinHeadingChars is the trimmed length below which a fragment is noise.
	MinHeadingChars = 5
)

// Reason names the filter rule that rejected a fragment.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonLength      Reason = "length"
	ReasonNoLetters   Reason = "no_letters"
	ReasonPageFooter  Reason = "page_footer"
	ReasonRevisionRow Reason = "revision_row"
)

// revisionRowPattern matches revision-history table rows such as "2.1 14 MAR 2024".
var revisionRowPattern = regexp.MustCompile(`^\d\.\d\s+\d{1,2}\s+[A-Z]{3,}\s+\d{4}`)

// RejectReason returns the first rule that rejects f, or ReasonNone.
func RejectReason(f doctree.Fragment) Reason {
	text := f.Text
	if len(strings.Fields(text)) > MaxHeadingWords || utf8.RuneCountInString(strings.TrimSpace(text)) < MinHeadingChars {
		return ReasonLength
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return ReasonNoLetters
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "page") && strings.Contains(lower, "of") {
		return ReasonPageFooter
	}
	if revisionRowPattern.MatchString(text) {
		return ReasonRevisionRow
	}
	return ReasonNone
}

// FilterCandidates drops fragments that cannot be headings, keeping order.
func FilterCandidates(frags []doctree.Fragment) []doctree.Fragment {
	var out []doctree.Fragment
	for _, f := range frags {
		if RejectReason(f) == ReasonNone {
			out = append(out, f)
		}
	}
	return out
}
