package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Winify/webdriverio-mcp/internal/driver"
	"github.com/Winify/webdriverio-mcp/internal/markup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeElement implements driver.Element with per-accessor failure injection.
type fakeElement struct {
	displayed    bool
	displayedErr error

	tag, text string
	attrs     map[string]string
	enabled   bool
	rect      markup.Rect

	// failFields makes every accessor except Displayed return an error.
	failFields bool
	// panicTag makes TagName panic, exercising fault absorption.
	panicTag bool
}

var errInjected = errors.New("injected element fault")

func (f *fakeElement) Displayed(ctx context.Context) (bool, error) {
	return f.displayed, f.displayedErr
}

func (f *fakeElement) TagName(ctx context.Context) (string, error) {
	if f.panicTag {
		panic("tag fetch exploded")
	}
	if f.failFields {
		return "", errInjected
	}
	return f.tag, nil
}

func (f *fakeElement) Text(ctx context.Context) (string, error) {
	if f.failFields {
		return "", errInjected
	}
	return f.text, nil
}

func (f *fakeElement) Attribute(ctx context.Context, name string) (string, error) {
	if f.failFields {
		return "", errInjected
	}
	v, ok := f.attrs[name]
	if !ok {
		return "null", nil
	}
	return v, nil
}

func (f *fakeElement) Enabled(ctx context.Context) (bool, error) {
	if f.failFields {
		return false, errInjected
	}
	return f.enabled, nil
}

func (f *fakeElement) Location(ctx context.Context) (driver.Point, error) {
	if f.failFields {
		return driver.Point{}, errInjected
	}
	return driver.Point{X: f.rect.X, Y: f.rect.Y}, nil
}

func (f *fakeElement) Size(ctx context.Context) (driver.Size, error) {
	if f.failFields {
		return driver.Size{}, errInjected
	}
	return driver.Size{Width: f.rect.Width, Height: f.rect.Height}, nil
}

// fakeSession implements driver.Session over canned data.
type fakeSession struct {
	source    string
	sourceErr error

	elements []driver.Element
	findErr  error

	winSize driver.Size
	winErr  error

	ios bool
}

func (f *fakeSession) PageSource(ctx context.Context) (string, error) {
	return f.source, f.sourceErr
}

func (f *fakeSession) FindElements(ctx context.Context, using, value string) ([]driver.Element, error) {
	return f.elements, f.findErr
}

func (f *fakeSession) WindowSize(ctx context.Context) (driver.Size, error) {
	return f.winSize, f.winErr
}

func (f *fakeSession) Android() bool { return !f.ios }
func (f *fakeSession) IOS() bool     { return f.ios }

func healthyElement(id string) *fakeElement {
	return &fakeElement{
		displayed: true,
		tag:       "android.widget.Button",
		text:      "Go",
		attrs: map[string]string{
			"resource-id":  id,
			"content-desc": "go button",
			"class":        "android.widget.Button",
		},
		enabled: true,
		rect:    markup.Rect{X: 40, Y: 100, Width: 200, Height: 80},
	}
}

const scanSource = `<Root>
	<Node resource-id="btn1" text="Go" clickable="true" bounds="[40,100][240,180]"/>
	<Node text="Label" bounds="[40,200][240,260]"/>
</Root>`

func TestScanEndToEnd(t *testing.T) {
	// The broad live query only surfaces driver-flagged interactables, so
	// the text-only node never reaches the pipeline here; FromSnapshot
	// covers its policy-based inclusion.
	session := &fakeSession{
		source:   scanSource,
		elements: []driver.Element{healthyElement("btn1")},
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Contains(t, r.Selector, `resourceId("btn1")`)
	assert.Equal(t, "btn1", r.ResourceID)
	assert.Equal(t, "Go", r.Text)
	assert.True(t, r.Enabled)
	assert.True(t, r.InViewport)
	assert.Equal(t, markup.Rect{X: 40, Y: 100, Width: 200, Height: 80}, r.Bounds)
	require.Len(t, r.AlternateSelectors, 1, "one alternate by default")
	assert.Equal(t, "~go button", r.AlternateSelectors[0])
}

func TestScanFaultIsolation(t *testing.T) {
	// One element whose every attribute fetch fails plus nine healthy ones
	// must yield exactly nine records and no error.
	elements := []driver.Element{
		&fakeElement{displayed: true, failFields: true},
	}
	for i := 0; i < 9; i++ {
		elements = append(elements, healthyElement(fmt.Sprintf("id/%d", i)))
	}

	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: elements,
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 9)
}

func TestScanAbsorbsPanickingElement(t *testing.T) {
	panicky := healthyElement("id/panicky")
	panicky.panicTag = true
	elements := []driver.Element{
		panicky,
		healthyElement("id/ok"),
	}
	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: elements,
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	// The panicking element still has usable attrs, only its tag fetch
	// explodes; it degrades, it does not abort.
	assert.Len(t, records, 2)
}

func TestScanUnparsableSourceFailsCleanly(t *testing.T) {
	session := &fakeSession{
		source:   "<Root><Unclosed>",
		elements: []driver.Element{healthyElement("btn1")},
	}

	records, err := New(session).Scan(context.Background())
	require.Error(t, err)
	assert.Nil(t, records, "a broken snapshot must not look like an empty UI")
}

func TestScanNoSessionIsFatal(t *testing.T) {
	session := &fakeSession{sourceErr: driver.ErrNoSession}

	_, err := New(session).Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrNoSession)
}

func TestScanDropsUndisplayedElements(t *testing.T) {
	hidden := healthyElement("id/hidden")
	hidden.displayed = false
	failing := healthyElement("id/broken")
	failing.displayedErr = driver.ErrStaleElement

	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: []driver.Element{hidden, failing, healthyElement("id/ok")},
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "id/ok", records[0].ResourceID)
}

func TestScanDropsElementsWithoutUsableLocator(t *testing.T) {
	bare := &fakeElement{displayed: true, enabled: true,
		attrs: map[string]string{"resource-id": "null", "content-desc": "  ", "class": "null"}}

	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: []driver.Element{bare},
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScanViewportMembership(t *testing.T) {
	inside := healthyElement("id/in")
	outside := healthyElement("id/out")
	outside.rect = markup.Rect{X: 1000, Y: 2200, Width: 300, Height: 300}

	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: []driver.Element{inside, outside},
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]Record{}
	for _, r := range records {
		byID[r.ResourceID] = r
	}
	assert.True(t, byID["id/in"].InViewport)
	assert.False(t, byID["id/out"].InViewport)
}

func TestScanViewportFallbackWhenWindowSizeFails(t *testing.T) {
	far := healthyElement("id/far")
	far.rect = markup.Rect{X: 100000, Y: 100000, Width: 10, Height: 10}

	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: []driver.Element{far},
		winErr:   errors.New("window size unsupported"),
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].InViewport, "an unknown viewport disables the filter, it does not fail the scan")
}

func TestScanPreservesBatchOrder(t *testing.T) {
	var elements []driver.Element
	for i := 0; i < 25; i++ {
		elements = append(elements, healthyElement(fmt.Sprintf("id/%02d", i)))
	}
	session := &fakeSession{
		source:   `<Root><Node clickable="true"/></Root>`,
		elements: elements,
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	scanner := New(session, WithConfig(Config{BatchSize: 10}))
	records, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 25)

	// Batches settle strictly in order; records from a later batch can never
	// precede records from an earlier one.
	lastBatch := -1
	for _, r := range records {
		var idx int
		_, err := fmt.Sscanf(r.ResourceID, "id/%d", &idx)
		require.NoError(t, err)
		batch := idx / 10
		require.GreaterOrEqual(t, batch, lastBatch, "record %s out of batch order", r.ResourceID)
		lastBatch = batch
	}
}

func TestScanDropsDuplicatedResourceIDCandidate(t *testing.T) {
	// "dup" appears twice in the snapshot: a resource-id selector cannot
	// re-find one element, so the content-desc candidate takes over.
	source := `<Root>
		<Node resource-id="dup" content-desc="first" clickable="true"/>
		<Node resource-id="dup" content-desc="second" clickable="true"/>
	</Root>`

	el := healthyElement("dup")
	el.attrs["content-desc"] = "first"

	session := &fakeSession{
		source:   source,
		elements: []driver.Element{el},
		winSize:  driver.Size{Width: 1080, Height: 2280},
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "~first", records[0].Selector)
	assert.False(t, strings.Contains(records[0].Selector, "dup"))
}

func TestScanIOSAttributes(t *testing.T) {
	el := &fakeElement{
		displayed: true,
		tag:       "XCUIElementTypeButton",
		text:      "Log in",
		attrs: map[string]string{
			"name":  "loginButton",
			"label": "Log in",
			"value": "null",
		},
		enabled: true,
		rect:    markup.Rect{X: 10, Y: 50, Width: 100, Height: 44},
	}
	session := &fakeSession{
		source:   `<AppiumAUT><XCUIElementTypeButton name="loginButton"/></AppiumAUT>`,
		elements: []driver.Element{el},
		winSize:  driver.Size{Width: 390, Height: 844},
		ios:      true,
	}

	records, err := New(session).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "~loginButton", r.Selector)
	assert.Equal(t, "loginButton", r.AccessibilityID)
	assert.Equal(t, "XCUIElementTypeButton", r.Class)
	assert.Empty(t, r.ResourceID)
}
