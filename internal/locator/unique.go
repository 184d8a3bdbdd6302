package locator

import (
	"regexp"
	"strings"

	"github.com/Winify/webdriverio-mcp/internal/markup"
)

// Verifier checks whether an attribute/value pair resolves to exactly one
// element in a snapshot. It is an interface so the fast textual heuristic can
// be swapped for a structural checker without touching callers.
type Verifier interface {
	// Count reports how many times the pair occurs in the document.
	Count(doc, attr, value string) int
	// IsUnique reports whether the pair occurs exactly once.
	IsUnique(doc, attr, value string) bool
}

// TextualVerifier counts literal occurrences of `attr="value"` in the raw
// document text, with regex metacharacters in the value escaped.
//
// This is a heuristic, not a structural query: it never re-parses the
// document, which makes it cheap, but the same literal substring appearing
// under a coincidentally matching syntax elsewhere can skew the count. Use
// StructuralVerifier when that risk matters more than speed.
type TextualVerifier struct{}

func (TextualVerifier) Count(doc, attr, value string) int {
	re, err := regexp.Compile(regexp.QuoteMeta(attr) + `="` + regexp.QuoteMeta(value) + `"`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(doc, -1))
}

func (v TextualVerifier) IsUnique(doc, attr, value string) bool {
	return v.Count(doc, attr, value) == 1
}

// StructuralVerifier re-parses the document and counts elements whose named
// attribute equals the value exactly. Slower than TextualVerifier but immune
// to textual coincidences. A document that fails to parse counts as zero.
type StructuralVerifier struct{}

func (StructuralVerifier) Count(doc, attr, value string) int {
	root, err := markup.Parse(doc)
	if err != nil {
		return 0
	}
	value = escapeValueNewlines(value)
	count := 0
	markup.Walk(root, func(n *markup.Node) bool {
		if v, ok := n.Attr(attr); ok && v == value {
			count++
		}
		return true
	})
	return count
}

func (v StructuralVerifier) IsUnique(doc, attr, value string) bool {
	return v.Count(doc, attr, value) == 1
}

// escapeValueNewlines mirrors the normalizer's newline escaping so values
// fetched live (which may carry real line breaks) compare equal to the
// normalized tree's attribute values.
func escapeValueNewlines(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	v = strings.ReplaceAll(v, "\r", `\r`)
	return strings.ReplaceAll(v, "\n", `\n`)
}
