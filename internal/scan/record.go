package scan

import (
	"strings"

	"github.com/Winify/webdriverio-mcp/internal/markup"
)

// Record is one scanned element in the final result set. Optional string
// fields are empty (and omitted from JSON) when the underlying attribute was
// absent, the literal "null", or blank.
type Record struct {
	// Selector is the primary selector, the first candidate by rank.
	Selector string `json:"selector"`
	// AlternateSelectors are the next-best candidates, capped by
	// Config.MaxAlternates.
	AlternateSelectors []string `json:"alternate_selectors,omitempty"`

	Tag             string `json:"tag,omitempty"`
	Text            string `json:"text,omitempty"`
	ResourceID      string `json:"resource_id,omitempty"`
	AccessibilityID string `json:"accessibility_id,omitempty"`
	Class           string `json:"class,omitempty"`

	Enabled    bool        `json:"enabled"`
	InViewport bool        `json:"in_viewport"`
	Bounds     markup.Rect `json:"bounds"`
}

// optional maps an attribute value onto its record form: absent, "null" and
// blank all collapse to the empty string so the field is omitted.
func optional(v string) string {
	if v == "null" || strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}
