package locator_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winify/webdriverio-mcp/internal/locator"
)

func TestGenerateAndroidPriorityOrder(t *testing.T) {
	attrs := locator.AndroidAttributes{
		ResourceID:  "com.example:id/go",
		ContentDesc: "Go button",
		Text:        "Go",
		Class:       "android.widget.Button",
	}
	got := locator.Generate(attrs, locator.GenerateOptions{})
	require.Len(t, got, 4)

	assert.Equal(t, locator.StrategyResourceID, got[0].Strategy)
	assert.Equal(t, `android=new UiSelector().resourceId("com.example:id/go")`, got[0].Selector)
	assert.Equal(t, locator.StrategyAccessibilityID, got[1].Strategy)
	assert.Equal(t, "~Go button", got[1].Selector)
	assert.Equal(t, locator.StrategyText, got[2].Strategy)
	assert.Equal(t, locator.StrategyClassName, got[3].Strategy)

	for i, c := range got {
		assert.Equal(t, i, c.Rank, "ranks follow generation order")
	}
}

func TestGenerateIOSPriorityOrder(t *testing.T) {
	attrs := locator.IOSAttributes{
		Name:  "loginButton",
		Label: "Log in",
		Value: "idle",
		Type:  "XCUIElementTypeButton",
	}
	got := locator.Generate(attrs, locator.GenerateOptions{})
	require.Len(t, got, 4)

	assert.Equal(t, "~loginButton", got[0].Selector)
	assert.Equal(t, `-ios predicate string:label == "Log in"`, got[1].Selector)
	assert.Equal(t, `-ios predicate string:value == "idle"`, got[2].Selector)
	assert.Equal(t, `-ios class chain:**/XCUIElementTypeButton`, got[3].Selector)
}

func TestGenerateSkipsUnusableValues(t *testing.T) {
	tests := []struct {
		name  string
		attrs locator.Attributes
		want  int
	}{
		{"empty bag android", locator.AndroidAttributes{}, 0},
		{"empty bag ios", locator.IOSAttributes{}, 0},
		{"null tokens", locator.AndroidAttributes{ResourceID: "null", Text: "null", Class: "null"}, 0},
		{"blank values", locator.AndroidAttributes{ResourceID: "   ", ContentDesc: "\t"}, 0},
		{"one usable", locator.AndroidAttributes{ResourceID: "id/x", Text: "null"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, locator.Generate(tt.attrs, locator.GenerateOptions{}), tt.want)
		})
	}
}

func TestGenerateTextCeiling(t *testing.T) {
	long := "This visible text is far too long to be a usable selector"
	attrs := locator.AndroidAttributes{Text: long, Class: "android.widget.TextView"}

	got := locator.Generate(attrs, locator.GenerateOptions{})
	require.Len(t, got, 1, "over-ceiling text is skipped, class remains")
	assert.Equal(t, locator.StrategyClassName, got[0].Strategy)

	got = locator.Generate(attrs, locator.GenerateOptions{TextCeiling: len(long)})
	require.Len(t, got, 2, "a raised ceiling admits the text selector")
	assert.Equal(t, locator.StrategyText, got[0].Strategy)
}

func TestGenerateDeterministic(t *testing.T) {
	attrs := locator.AndroidAttributes{
		ResourceID:  "id/a",
		ContentDesc: "desc",
		Text:        "short",
		Class:       "android.widget.Button",
	}
	first := locator.Generate(attrs, locator.GenerateOptions{})
	second := locator.Generate(attrs, locator.GenerateOptions{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("generation is not deterministic (-first +second):\n%s", diff)
	}
}
