package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const androidSource = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<hierarchy rotation="0">
  <android.widget.FrameLayout resource-id="" bounds="[0,0][1080,2280]">
    <android.widget.Button resource-id="com.example:id/go" text="Go" clickable="true" bounds="[40,100][240,180]"/>
    <android.widget.TextView text="Label" bounds="[40,200][240,260]"/>
  </android.widget.FrameLayout>
</hierarchy>`

func TestParse(t *testing.T) {
	root, err := Parse(androidSource)
	require.NoError(t, err)

	assert.Equal(t, "hierarchy", root.Tag)
	assert.Empty(t, root.Path)
	require.Len(t, root.Children, 1)

	frame := root.Children[0]
	assert.Equal(t, "android.widget.FrameLayout", frame.Tag)
	assert.Equal(t, []int{0}, frame.Path)
	require.Len(t, frame.Children, 2)
	assert.Equal(t, []int{0, 0}, frame.Children[0].Path)
	assert.Equal(t, []int{0, 1}, frame.Children[1].Path)

	text, ok := frame.Children[0].Attr("text")
	require.True(t, ok)
	assert.Equal(t, "Go", text)

	_, ok = frame.Children[1].Attr("resource-id")
	assert.False(t, ok, "absent attribute must not be reported present")
}

func TestParseSkipsProcessingInstructions(t *testing.T) {
	root, err := Parse(`<?xml version="1.0"?><!-- dumper banner --><AppiumAUT><XCUIElementTypeApplication/></AppiumAUT>`)
	require.NoError(t, err)
	assert.Equal(t, "AppiumAUT", root.Tag)
}

func TestParseToleratesUndeclaredNamespacePrefix(t *testing.T) {
	root, err := Parse(`<hierarchy><node android:id="x" text="ok"/></hierarchy>`)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	v, ok := root.Children[0].Attr("id")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestParseEscapesAttributeNewlines(t *testing.T) {
	root, err := Parse("<hierarchy><node text=\"line one\nline two\"/></hierarchy>")
	require.NoError(t, err)
	v, _ := root.Children[0].Attr("text")
	assert.Equal(t, `line one\nline two`, v)
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	for _, raw := range []string{
		"<Root><Unclosed>",
		"<Root></Mismatch>",
		"not markup at all",
		"",
	} {
		root, err := Parse(raw)
		assert.Error(t, err, "input %q must not parse", raw)
		assert.Nil(t, root, "no partial tree for %q", raw)
	}
}

func TestParseIdempotent(t *testing.T) {
	a, err := Parse(androidSource)
	require.NoError(t, err)
	b, err := Parse(androidSource)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("parse is not idempotent (-first +second):\n%s", diff)
	}
}

// Paths must match positions reachable by following sibling indices from the
// root, for every node in the flattened tree.
func TestPathInvariant(t *testing.T) {
	root, err := Parse(androidSource)
	require.NoError(t, err)

	for _, n := range Flatten(root) {
		cur := root
		for _, idx := range n.Path {
			require.Less(t, idx, len(cur.Children), "path %v walks off the tree", n.Path)
			cur = cur.Children[idx]
		}
		assert.Same(t, n, cur, "path %v does not lead back to its node", n.Path)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	root, err := Parse(androidSource)
	require.NoError(t, err)

	visited := 0
	Walk(root, func(n *Node) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func FuzzParse(f *testing.F) {
	f.Add(androidSource)
	f.Add("<Root><Unclosed>")
	f.Add("<a b=\"c\nd\"/>")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		root, err := Parse(raw)
		if err != nil {
			if root != nil {
				t.Fatal("error with non-nil tree")
			}
			return
		}
		// Any successful parse must satisfy the path invariant.
		for _, n := range Flatten(root) {
			cur := root
			for _, idx := range n.Path {
				if idx >= len(cur.Children) {
					t.Fatalf("path %v walks off the tree", n.Path)
				}
				cur = cur.Children[idx]
			}
			if cur != n {
				t.Fatalf("path %v does not lead back to its node", n.Path)
			}
		}
	})
}
