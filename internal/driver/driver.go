// Package driver defines the automation-session collaborators the scan
// pipeline consumes. Everything here is a read-only query surface: the
// pipeline never clicks, types, or otherwise mutates the application under
// automation.
package driver

import (
	"context"
	"errors"
)

// ErrNoSession means there is no live automation session to talk to. It is
// fatal for a whole scan; no partial result is attempted.
var ErrNoSession = errors.New("no active automation session")

// ErrStaleElement means an element handle no longer refers to anything in the
// current UI. It is isolated per element and never fails a scan.
var ErrStaleElement = errors.New("stale element reference")

// Point is an on-screen position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is an on-screen extent.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Element is a handle to one live UI element. Every query is independently
// fallible: a failure on one accessor says nothing about the others.
type Element interface {
	Displayed(ctx context.Context) (bool, error)
	TagName(ctx context.Context) (string, error)
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Enabled(ctx context.Context) (bool, error)
	Location(ctx context.Context) (Point, error)
	Size(ctx context.Context) (Size, error)
}

// Session is one live automation session against a device or simulator.
type Session interface {
	// PageSource returns the raw markup snapshot of the current UI.
	PageSource(ctx context.Context) (string, error)
	// FindElements runs one query against the live UI and returns matching
	// element handles in document order. The using argument is a WebDriver
	// location strategy such as "xpath".
	FindElements(ctx context.Context, using, value string) ([]Element, error)
	// WindowSize returns the viewport dimensions.
	WindowSize(ctx context.Context) (Size, error)
	// Android reports whether the session drives an Android target.
	Android() bool
	// IOS reports whether the session drives an iOS target.
	IOS() bool
}
