package markup

import (
	"regexp"
	"strconv"
)

// Rect is element geometry in screen pixels. Width and Height are never
// negative.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// In reports whether r is fully contained within outer.
func (r Rect) In(outer Rect) bool {
	return r.X >= outer.X &&
		r.Y >= outer.Y &&
		r.X+r.Width <= outer.X+outer.Width &&
		r.Y+r.Height <= outer.Y+outer.Height
}

// Area returns the rectangle's area.
func (r Rect) Area() int { return r.Width * r.Height }

var bracketBounds = regexp.MustCompile(`\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]`)

// ParseBoundsBracket extracts a rectangle from the Android two-corner bounds
// encoding "[x1,y1][x2,y2]". It is total: input that does not match the
// pattern yields the zero rectangle, and inverted corners clamp width/height
// to 0 rather than going negative.
func ParseBoundsBracket(s string) Rect {
	m := bracketBounds.FindStringSubmatch(s)
	if m == nil {
		return Rect{}
	}
	x1, _ := strconv.Atoi(m[1])
	y1, _ := strconv.Atoi(m[2])
	x2, _ := strconv.Atoi(m[3])
	y2, _ := strconv.Atoi(m[4])
	return Rect{X: x1, Y: y1, Width: clampNonNegative(x2 - x1), Height: clampNonNegative(y2 - y1)}
}

// RectFromAttrs builds a rectangle from the four independent numeric
// attributes used by iOS snapshots (x, y, width, height). Absent or
// unparseable values default to 0; the function never fails.
func RectFromAttrs(n *Node) Rect {
	return Rect{
		X:      attrInt(n, "x"),
		Y:      attrInt(n, "y"),
		Width:  clampNonNegative(attrInt(n, "width")),
		Height: clampNonNegative(attrInt(n, "height")),
	}
}

func attrInt(n *Node, name string) int {
	v, ok := n.Attr(name)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
