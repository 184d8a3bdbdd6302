package locator

import (
	"fmt"
	"strings"
)

// Strategy names the selector syntax a Candidate is expressed in.
type Strategy string

const (
	StrategyResourceID      Strategy = "resource-id"
	StrategyAccessibilityID Strategy = "accessibility-id"
	StrategyText            Strategy = "text"
	StrategyClassName       Strategy = "class-name"
	StrategyPredicate       Strategy = "ios-predicate"
	StrategyClassChain      Strategy = "ios-class-chain"
)

// Candidate is one selector string an element can later be re-found with.
// Lower Rank is preferred; ranks are assigned in generation order.
type Candidate struct {
	Strategy Strategy `json:"strategy"`
	Selector string   `json:"selector"`
	Rank     int      `json:"rank"`
}

// DefaultTextCeiling is the longest visible text that still makes a usable
// text selector. Anything longer tends to be a paragraph, not a label.
const DefaultTextCeiling = 20

// GenerateOptions tune candidate synthesis.
type GenerateOptions struct {
	// TextCeiling caps the length of visible text used for a text selector.
	// Zero means DefaultTextCeiling.
	TextCeiling int
}

// Generate builds the ordered candidate list for one element's attribute bag.
//
// The priority order is fixed per platform:
//
//	Android: resource-id, content-desc, text (below the ceiling), class name.
//	iOS:     accessibility id, label, value, type chain.
//
// A value participates only when present, not the literal "null", and not
// blank after trimming. An element whose bag yields nothing returns an empty
// list; such an element cannot be reliably re-located.
func Generate(attrs Attributes, opts GenerateOptions) []Candidate {
	ceiling := opts.TextCeiling
	if ceiling <= 0 {
		ceiling = DefaultTextCeiling
	}

	var out []Candidate
	add := func(strategy Strategy, selector string) {
		out = append(out, Candidate{Strategy: strategy, Selector: selector, Rank: len(out)})
	}

	switch a := attrs.(type) {
	case AndroidAttributes:
		if usable(a.ResourceID) {
			add(StrategyResourceID, fmt.Sprintf(`android=new UiSelector().resourceId("%s")`, a.ResourceID))
		}
		if usable(a.ContentDesc) {
			add(StrategyAccessibilityID, "~"+a.ContentDesc)
		}
		if usable(a.Text) && len(a.Text) <= ceiling {
			add(StrategyText, fmt.Sprintf(`android=new UiSelector().text("%s")`, a.Text))
		}
		if usable(a.Class) {
			add(StrategyClassName, fmt.Sprintf(`android=new UiSelector().className("%s")`, a.Class))
		}
	case IOSAttributes:
		if usable(a.Name) {
			add(StrategyAccessibilityID, "~"+a.Name)
		}
		if usable(a.Label) {
			add(StrategyPredicate, fmt.Sprintf(`-ios predicate string:label == "%s"`, a.Label))
		}
		if usable(a.Value) {
			add(StrategyPredicate, fmt.Sprintf(`-ios predicate string:value == "%s"`, a.Value))
		}
		if usable(a.Type) {
			add(StrategyClassChain, fmt.Sprintf(`-ios class chain:**/%s`, a.Type))
		}
	}
	return out
}

// usable reports whether an attribute value can anchor a selector: present,
// not the literal absence token, and not blank after trimming.
func usable(v string) bool {
	return v != "" && v != "null" && strings.TrimSpace(v) != ""
}
