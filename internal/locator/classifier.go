package locator

import (
	"strings"

	"github.com/Winify/webdriverio-mcp/internal/markup"
)

// IsInteractable reports whether a snapshot node is an interaction target:
// either its tag is in the policy's interactable set, or one of the policy's
// boolean attribute predicates holds on it.
func IsInteractable(n *markup.Node, p Policy) bool {
	if n == nil {
		return false
	}
	if p.InteractableTags[n.Tag] {
		return true
	}
	for _, attr := range p.BoolAttrs {
		if v, ok := n.Attr(attr); ok && v == "true" {
			return true
		}
	}
	return false
}

// IsLayoutContainer reports whether a node is a structural grouping widget
// with no directly meaningful content of its own.
func IsLayoutContainer(n *markup.Node, p Policy) bool {
	if n == nil {
		return false
	}
	return p.ContainerTags[n.Tag] && !HasMeaningfulContent(n, p)
}

// HasMeaningfulContent reports whether any of the policy's content-bearing
// attributes is present and non-blank on the node.
func HasMeaningfulContent(n *markup.Node, p Policy) bool {
	if n == nil {
		return false
	}
	for _, attr := range p.ContentAttrs {
		if v, ok := n.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// ShouldInclude is the combined filter: a node is surfaced when it is
// interactable, or when it is not a layout container and carries meaningful
// content. Structural wrappers without content of their own are excluded.
func ShouldInclude(n *markup.Node, p Policy) bool {
	if IsInteractable(n, p) {
		return true
	}
	return !IsLayoutContainer(n, p) && HasMeaningfulContent(n, p)
}
