package scan

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Winify/webdriverio-mcp/internal/locator"
	"github.com/Winify/webdriverio-mcp/internal/markup"
)

// FromSnapshot assembles records from a static hierarchy document alone, with
// no live session. It is the offline counterpart of Scan: the classifier
// stands in for the driver's displayed check, bounds come from the snapshot's
// geometry encoding, and there is no viewport filter.
//
// Useful for scanning a saved page-source dump, and for auditing what a live
// scan would have surfaced.
func (s *Scanner) FromSnapshot(raw string, platform locator.Platform, policy locator.Policy) ([]Record, error) {
	root, err := markup.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("page source snapshot unusable: %w", err)
	}

	var records []Record
	dropped := 0
	markup.Walk(root, func(n *markup.Node) bool {
		if !locator.ShouldInclude(n, policy) {
			return true
		}
		r, ok := s.snapshotRecord(n, platform, raw)
		if !ok {
			dropped++
			return true
		}
		records = append(records, r)
		return true
	})

	s.logger.Info("snapshot scan complete",
		zap.String("platform", platform.String()),
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped))
	return records, nil
}

func (s *Scanner) snapshotRecord(n *markup.Node, platform locator.Platform, raw string) (Record, bool) {
	var (
		attrs  locator.Attributes
		bounds markup.Rect
	)
	if platform == locator.IOS {
		attrs = locator.IOSAttributes{
			Name:  n.AttrOr("name", ""),
			Label: n.AttrOr("label", ""),
			Value: n.AttrOr("value", ""),
			Type:  n.Tag,
		}
		bounds = markup.RectFromAttrs(n)
	} else {
		attrs = locator.AndroidAttributes{
			ResourceID:  n.AttrOr("resource-id", ""),
			ContentDesc: n.AttrOr("content-desc", ""),
			Text:        n.AttrOr("text", ""),
			Class:       n.AttrOr("class", n.Tag),
		}
		bounds = markup.ParseBoundsBracket(n.AttrOr("bounds", ""))
	}

	candidates := locator.Generate(attrs, locator.GenerateOptions{TextCeiling: s.cfg.TextCeiling})
	candidates = s.dropDuplicatedIDs(raw, attrs, candidates)
	if len(candidates) == 0 {
		return Record{}, false
	}

	r := Record{
		Selector:   candidates[0].Selector,
		Enabled:    n.AttrOr("enabled", "true") == "true",
		InViewport: true,
		Bounds:     bounds,
	}
	for _, c := range candidates[1:] {
		if len(r.AlternateSelectors) == s.cfg.MaxAlternates {
			break
		}
		r.AlternateSelectors = append(r.AlternateSelectors, c.Selector)
	}

	switch a := attrs.(type) {
	case locator.AndroidAttributes:
		r.Tag = optional(a.Class)
		r.Text = optional(a.Text)
		r.ResourceID = optional(a.ResourceID)
		r.AccessibilityID = optional(a.ContentDesc)
		r.Class = optional(a.Class)
	case locator.IOSAttributes:
		r.Tag = optional(a.Type)
		r.Text = optional(a.Label)
		r.AccessibilityID = optional(a.Name)
		r.Class = optional(a.Type)
	}
	return r, true
}
