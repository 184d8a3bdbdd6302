package locator

// Attributes is the per-platform bag of identifying attributes harvested from
// a live element or a snapshot node. It is a closed tagged variant: candidate
// generation type-switches on the concrete type instead of branching on a
// platform flag.
type Attributes interface {
	// Platform reports which selector ecosystem the attributes belong to.
	Platform() Platform
}

// AndroidAttributes identifies an element in the resource-id ecosystem.
type AndroidAttributes struct {
	// ResourceID is the stable application resource identifier, e.g.
	// "com.example:id/login_button".
	ResourceID string
	// ContentDesc is the accessibility content description.
	ContentDesc string
	// Text is the visible text.
	Text string
	// Class is the fully qualified widget class, e.g. "android.widget.Button".
	Class string
}

func (AndroidAttributes) Platform() Platform { return Android }

// IOSAttributes identifies an element in the accessibility-id ecosystem.
type IOSAttributes struct {
	// Name is the accessibility identifier.
	Name string
	// Label is the accessibility label (usually the visible text).
	Label string
	// Value is the element's current value.
	Value string
	// Type is the XCUIElementType, e.g. "XCUIElementTypeButton".
	Type string
}

func (IOSAttributes) Platform() Platform { return IOS }
