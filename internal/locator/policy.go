package locator

// Policy decides which snapshot nodes are worth surfacing. The tag sets cover
// the static widget vocabulary of a platform; BoolAttrs let an arbitrary tag
// qualify as interactable when the dumper flagged it so (e.g.
// clickable="true" on a bare View).
type Policy struct {
	// InteractableTags are widget classes that are interaction targets by
	// nature.
	InteractableTags map[string]bool
	// ContainerTags are structural grouping widgets, excluded unless they
	// carry visible content of their own.
	ContainerTags map[string]bool
	// BoolAttrs are attributes whose "true" value marks any tag interactable.
	BoolAttrs []string
	// ContentAttrs are the attributes that count as visible content.
	ContentAttrs []string
}

// DefaultPolicy returns the stock filter policy for a platform.
func DefaultPolicy(p Platform) Policy {
	if p == IOS {
		return Policy{
			InteractableTags: tagSet(
				"XCUIElementTypeButton",
				"XCUIElementTypeTextField",
				"XCUIElementTypeSecureTextField",
				"XCUIElementTypeTextView",
				"XCUIElementTypeSwitch",
				"XCUIElementTypeSlider",
				"XCUIElementTypeCell",
				"XCUIElementTypeLink",
				"XCUIElementTypeSearchField",
				"XCUIElementTypeSegmentedControl",
				"XCUIElementTypeStepper",
				"XCUIElementTypePickerWheel",
			),
			ContainerTags: tagSet(
				"XCUIElementTypeOther",
				"XCUIElementTypeGroup",
				"XCUIElementTypeWindow",
				"XCUIElementTypeScrollView",
				"XCUIElementTypeTable",
				"XCUIElementTypeCollectionView",
				"XCUIElementTypeApplication",
			),
			BoolAttrs:    []string{"accessible", "enabled"},
			ContentAttrs: []string{"name", "label", "value"},
		}
	}
	return Policy{
		InteractableTags: tagSet(
			"android.widget.Button",
			"android.widget.ImageButton",
			"android.widget.EditText",
			"android.widget.AutoCompleteTextView",
			"android.widget.CheckBox",
			"android.widget.RadioButton",
			"android.widget.Switch",
			"android.widget.ToggleButton",
			"android.widget.Spinner",
			"android.widget.SeekBar",
		),
		ContainerTags: tagSet(
			"android.widget.FrameLayout",
			"android.widget.LinearLayout",
			"android.widget.RelativeLayout",
			"android.widget.GridLayout",
			"android.widget.TableLayout",
			"android.widget.ScrollView",
			"android.widget.HorizontalScrollView",
			"android.widget.ListView",
			"android.view.ViewGroup",
			"androidx.recyclerview.widget.RecyclerView",
			"androidx.constraintlayout.widget.ConstraintLayout",
			"androidx.cardview.widget.CardView",
		),
		BoolAttrs:    []string{"clickable", "focusable", "checkable", "scrollable"},
		ContentAttrs: []string{"text", "content-desc", "hint"},
	}
}

func tagSet(tags ...string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}
