// Package markup normalizes raw UI hierarchy documents (Android UiAutomator
// dumps, iOS WDA snapshots) into an attribute-typed tree with stable
// positional paths.
package markup

// Attr is a single element attribute. Order of attributes is preserved from
// the source document.
type Attr struct {
	Name  string
	Value string
}

// Node is one normalized element of a UI hierarchy snapshot.
//
// Path identifies the node positionally: the root has an empty path, and a
// child's path is its parent's path with the child's zero-based sibling index
// appended. Sibling indices are contiguous from 0.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node
	Path     []int
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the value of the named attribute, or def when absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Walk visits root and all of its descendants depth-first, in document order.
// Traversal stops early if fn returns false.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, c := range root.Children {
		Walk(c, fn)
	}
}

// Flatten returns root and all of its descendants in depth-first document
// order.
func Flatten(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}
