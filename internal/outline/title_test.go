package outline

import (
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestDetectTitle(t *testing.T) {
	tests := []struct {
		name  string
		frags []doctree.Fragment
		want  string
	}{
		{
			name:  "no bold on first page",
			frags: []doctree.Fragment{frag("Plain Heading", 30, false, 1), frag("Bold Later", 30, true, 2)},
			want:  UntitledTitle,
		},
		{
			name: "largest bold joined in order",
			frags: []doctree.Fragment{
				frag("Request for", 22, true, 1),
				frag("Subtitle text", 16, true, 1),
				frag("Proposal", 22, true, 1),
			},
			want: "Request for Proposal",
		},
		{
			name: "multi-size title keeps only largest part",
			frags: []doctree.Fragment{
				frag("Overview", 18, true, 1),
				frag("Foundation Level Extensions", 24, true, 1),
			},
			want: "Foundation Level Extensions",
		},
		{
			name:  "trimmed",
			frags: []doctree.Fragment{frag("  Spaced Title ", 20, true, 1)},
			want:  "Spaced Title",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTitle(tt.frags); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFallbackTitle(t *testing.T) {
	t.Run("bold title used", func(t *testing.T) {
		frags := []doctree.Fragment{frag("", 10, false, 1), frag("Party Invitation", 20, true, 1)}
		if got := FallbackTitle(frags); got != "Party Invitation" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("first non-empty text without bold", func(t *testing.T) {
		frags := []doctree.Fragment{frag("   ", 10, false, 1), frag("Hope To See You There", 14, false, 1)}
		if got := FallbackTitle(frags); got != "Hope To See You There" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("too many same-size bold parts", func(t *testing.T) {
		var frags []doctree.Fragment
		frags = append(frags, frag("First line of flyer", 12, false, 1))
		for range MaxFallbackTitleParts + 1 {
			frags = append(frags, frag("Bold Row", 16, true, 1))
		}
		if got := FallbackTitle(frags); got != "First line of flyer" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		if got := FallbackTitle(nil); got != "" {
			t.Errorf("got %q", got)
		}
	})
}

func TestIsWeakTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Untitled Document", true},
		{"  untitled  ", true},
		{"UNTITLED DOCUMENT", true},
		{"RFP", true},
		{"", true},
		{"Guide", false},
		{"Annual Report", false},
	}
	for _, tt := range tests {
		if got := IsWeakTitle(tt.title); got != tt.want {
			t.Errorf("IsWeakTitle(%q): expected %v, got %v", tt.title, tt.want, got)
		}
	}
}

func TestResolveTitle(t *testing.T) {
	if got := ResolveTitle("Untitled Document", "Real Title"); got != "Real Title" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := ResolveTitle("Untitled Document", ""); got != "Untitled Document" {
		t.Errorf("expected primary kept when fallback empty, got %q", got)
	}
	if got := ResolveTitle("Strong Title", "Other"); got != "Strong Title" {
		t.Errorf("expected primary kept, got %q", got)
	}
}
