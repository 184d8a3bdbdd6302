package markup

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Parse converts a raw hierarchy document into a normalized Node tree.
//
// The parser tolerates things device-side dumpers get wrong: namespace
// prefixes without declarations are accepted, and newlines embedded in
// attribute values are replaced with the literal escape `\n` so they cannot
// corrupt downstream single-line text matching. It is strict about structure:
// a malformed or truncated document returns an error, never a partial tree,
// so callers can distinguish "no snapshot" from "empty UI".
//
// The returned root is the document's first element child; processing
// instructions, comments and directives ahead of it are skipped.
func Parse(raw string) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, fmt.Errorf("malformed hierarchy document: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("hierarchy document has no root element")
	}

	return normalize(root, nil), nil
}

func normalize(el *etree.Element, path []int) *Node {
	n := &Node{
		Tag:  el.Tag,
		Path: append([]int(nil), path...),
	}
	for _, a := range el.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: a.Key, Value: escapeNewlines(a.Value)})
	}
	for i, child := range el.ChildElements() {
		n.Children = append(n.Children, normalize(child, append(path, i)))
	}
	return n
}

// escapeNewlines rewrites literal line breaks in attribute values as the
// two-character escapes `\n` and `\r`.
func escapeNewlines(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	v = strings.ReplaceAll(v, "\r", `\r`)
	return strings.ReplaceAll(v, "\n", `\n`)
}
