// Package locator classifies normalized UI hierarchy nodes and synthesizes
// ranked, platform-appropriate selector candidates for re-finding elements
// through a WebDriver-style automation session.
package locator

import "fmt"

// Platform selects which selector ecosystem an element belongs to.
type Platform int

const (
	// Android targets the UiAutomator2 resource-id ecosystem.
	Android Platform = iota
	// IOS targets the XCUITest accessibility-id ecosystem.
	IOS
)

func (p Platform) String() string {
	switch p {
	case Android:
		return "android"
	case IOS:
		return "ios"
	default:
		return fmt.Sprintf("Platform(%d)", int(p))
	}
}

// ParsePlatform maps a user-supplied platform name onto a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "android", "Android":
		return Android, nil
	case "ios", "iOS", "IOS":
		return IOS, nil
	default:
		return Android, fmt.Errorf("unknown platform %q (want android or ios)", s)
	}
}
