// Package scan walks the live UI through an automation session and produces
// ranked, re-usable selector records for every qualifying element.
//
// The orchestration contract is per-element fault isolation: one stale or
// half-rendered element is dropped, counted, and never aborts the scan. Only
// the inability to obtain any snapshot at all is fatal.
package scan

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Winify/webdriverio-mcp/internal/driver"
	"github.com/Winify/webdriverio-mcp/internal/locator"
	"github.com/Winify/webdriverio-mcp/internal/markup"
)

// viewportFallback stands in for the window size when the driver cannot
// report one. It is large enough that the viewport filter never rejects
// anything, which degrades the filter instead of failing the scan.
const viewportFallback = 1 << 30

// Config tunes one scan.
type Config struct {
	// BatchSize bounds how many elements are in flight concurrently. Zero
	// means 10.
	BatchSize int
	// MaxAlternates caps how many non-primary candidates are kept per
	// record. Zero means 1.
	MaxAlternates int
	// TextCeiling caps visible-text selector length; see locator.Generate.
	TextCeiling int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MaxAlternates <= 0 {
		c.MaxAlternates = 1
	}
	if c.TextCeiling <= 0 {
		c.TextCeiling = locator.DefaultTextCeiling
	}
	return c
}

// Scanner owns the state of one scan pipeline instance. Each scan carries its
// own Scanner; there are no process-wide singletons.
type Scanner struct {
	session  driver.Session
	verifier locator.Verifier
	logger   *zap.Logger
	cfg      Config
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConfig overrides the default scan tuning.
func WithConfig(cfg Config) Option {
	return func(s *Scanner) { s.cfg = cfg }
}

// WithVerifier substitutes the uniqueness verifier, e.g. a
// locator.StructuralVerifier when textual counting is too loose.
func WithVerifier(v locator.Verifier) Option {
	return func(s *Scanner) { s.verifier = v }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// New builds a Scanner over a live session. A nil session is allowed when
// only FromSnapshot will be used.
func New(session driver.Session, opts ...Option) *Scanner {
	s := &Scanner{
		session:  session,
		verifier: locator.TextualVerifier{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.cfg.withDefaults()
	s.logger = s.logger.Named("scan").With(zap.String("scan_id", uuid.NewString()))
	return s
}

// interactableQuery is the single broad query that lets the driver do the
// first filter pass instead of walking every node individually.
func interactableQuery(p locator.Platform) (using, value string) {
	if p == locator.IOS {
		return "xpath", `//*[@accessible="true" or @enabled="true"]`
	}
	return "xpath", `//*[@clickable="true" or @checkable="true" or @scrollable="true" or @focusable="true"]`
}

// Scan queries all interactable live elements and assembles selector records
// for them in bounded-concurrency batches.
//
// An unparsable page source aborts with an error and an empty result — never
// a silently empty result that looks like "UI has no elements". Per-element
// failures of any kind only drop that element.
func (s *Scanner) Scan(ctx context.Context) ([]Record, error) {
	platform := s.platform()

	raw, err := s.session.PageSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch page source: %w", err)
	}
	if _, err := markup.Parse(raw); err != nil {
		return nil, fmt.Errorf("page source snapshot unusable: %w", err)
	}

	using, value := interactableQuery(platform)
	elements, err := s.session.FindElements(ctx, using, value)
	if err != nil {
		return nil, fmt.Errorf("query interactable elements: %w", err)
	}
	s.logger.Debug("live query complete", zap.Int("elements", len(elements)))

	viewport := s.viewport(ctx)

	records := make([]Record, 0, len(elements))
	dropped := 0
	for start := 0; start < len(elements); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(elements) {
			end = len(elements)
		}
		batch := elements[start:end]

		// Scatter the batch, gather before the next one starts. This bounds
		// in-flight driver requests to the batch size and keeps inter-batch
		// output order stable.
		results := make([]*Record, len(batch))
		g := new(errgroup.Group)
		for i, el := range batch {
			i, el := i, el
			g.Go(func() error {
				results[i] = s.processElement(ctx, el, platform, raw, viewport)
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			if r == nil {
				dropped++
				continue
			}
			records = append(records, *r)
		}
	}

	s.logger.Info("scan complete",
		zap.String("platform", platform.String()),
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped))
	return records, nil
}

func (s *Scanner) platform() locator.Platform {
	if s.session.IOS() {
		return locator.IOS
	}
	return locator.Android
}

// viewport returns the window rectangle, falling back to an effectively
// unbounded one when the driver cannot report a size.
func (s *Scanner) viewport(ctx context.Context) markup.Rect {
	size, err := s.session.WindowSize(ctx)
	if err != nil || size.Width <= 0 || size.Height <= 0 {
		s.logger.Debug("window size unavailable, viewport filter disabled", zap.Error(err))
		return markup.Rect{Width: viewportFallback, Height: viewportFallback}
	}
	return markup.Rect{Width: size.Width, Height: size.Height}
}

// fetched is the folded outcome of one best-effort attribute fetch.
type fetched[T any] struct {
	value T
	ok    bool
}

// fetch folds one driver query into present/absent. It also absorbs panics:
// fetches run on their own goroutines, out of reach of the element-level
// recover.
func fetch[T any](ctx context.Context, f func(context.Context) (T, error)) (out fetched[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = fetched[T]{}
		}
	}()
	v, err := f(ctx)
	if err != nil {
		return fetched[T]{}
	}
	return fetched[T]{value: v, ok: true}
}

func (f fetched[T]) or(def T) T {
	if f.ok {
		return f.value
	}
	return def
}

// processElement turns one live element into a Record, or nil when the
// element is dropped: not displayed, no usable locator, or faulted. A fault
// in any step is absorbed here and never escalates.
func (s *Scanner) processElement(ctx context.Context, el driver.Element, platform locator.Platform, raw string, viewport markup.Rect) (rec *Record) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("element processing panicked", zap.Any("panic", r))
			rec = nil
		}
	}()

	displayed, err := el.Displayed(ctx)
	if err != nil || !displayed {
		return nil
	}

	// Each field degrades independently to "absent"; the element survives as
	// long as the candidate generator finds something usable.
	var (
		tag, text           fetched[string]
		attrA, attrB, attrC fetched[string]
		enabled             fetched[bool]
		location            fetched[driver.Point]
		size                fetched[driver.Size]
	)

	names := identifierAttrs(platform)
	g := new(errgroup.Group)
	g.Go(func() error { tag = fetch(ctx, el.TagName); return nil })
	g.Go(func() error { text = fetch(ctx, el.Text); return nil })
	g.Go(func() error {
		attrA = fetch(ctx, func(ctx context.Context) (string, error) { return el.Attribute(ctx, names[0]) })
		return nil
	})
	g.Go(func() error {
		attrB = fetch(ctx, func(ctx context.Context) (string, error) { return el.Attribute(ctx, names[1]) })
		return nil
	})
	g.Go(func() error {
		attrC = fetch(ctx, func(ctx context.Context) (string, error) { return el.Attribute(ctx, names[2]) })
		return nil
	})
	g.Go(func() error { enabled = fetch(ctx, el.Enabled); return nil })
	g.Go(func() error { location = fetch(ctx, el.Location); return nil })
	g.Go(func() error { size = fetch(ctx, el.Size); return nil })
	_ = g.Wait()

	bounds := markup.Rect{
		X:      location.or(driver.Point{}).X,
		Y:      location.or(driver.Point{}).Y,
		Width:  size.or(driver.Size{}).Width,
		Height: size.or(driver.Size{}).Height,
	}

	attrs := buildAttributes(platform, tag.or(""), text.or(""), attrA.or(""), attrB.or(""), attrC.or(""))
	candidates := locator.Generate(attrs, locator.GenerateOptions{TextCeiling: s.cfg.TextCeiling})
	candidates = s.dropDuplicatedIDs(raw, attrs, candidates)
	if len(candidates) == 0 {
		return nil
	}

	r := Record{
		Selector:   candidates[0].Selector,
		Tag:        optional(tag.or("")),
		Text:       optional(text.or("")),
		Enabled:    enabled.or(false),
		InViewport: bounds.In(viewport),
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
		r.ResourceID = optional(a.ResourceID)
		r.AccessibilityID = optional(a.ContentDesc)
		r.Class = optional(a.Class)
	case locator.IOSAttributes:
		r.AccessibilityID = optional(a.Name)
		r.Class = optional(a.Type)
	}
	return &r
}

// identifierAttrs lists the three platform identifier attributes fetched per
// element, in the order buildAttributes consumes them.
func identifierAttrs(p locator.Platform) [3]string {
	if p == locator.IOS {
		return [3]string{"name", "label", "value"}
	}
	return [3]string{"resource-id", "content-desc", "class"}
}

func buildAttributes(p locator.Platform, tag, text, a, b, c string) locator.Attributes {
	if p == locator.IOS {
		label := b
		if optional(label) == "" {
			label = text
		}
		return locator.IOSAttributes{Name: a, Label: label, Value: c, Type: tag}
	}
	class := c
	if optional(class) == "" {
		class = tag
	}
	return locator.AndroidAttributes{ResourceID: a, ContentDesc: b, Text: text, Class: class}
}

// dropDuplicatedIDs removes identifier candidates whose value provably occurs
// more than once in the snapshot: a duplicated id cannot re-find one element.
// A count of zero keeps the candidate — the textual heuristic undercounts
// when the live value diverges from the snapshot, and that is no reason to
// discard an otherwise stable identifier.
func (s *Scanner) dropDuplicatedIDs(raw string, attrs locator.Attributes, candidates []locator.Candidate) []locator.Candidate {
	duplicated := func(attr, value string) bool {
		return s.verifier.Count(raw, attr, value) > 1
	}

	out := candidates[:0]
	for _, c := range candidates {
		drop := false
		switch a := attrs.(type) {
		case locator.AndroidAttributes:
			if c.Strategy == locator.StrategyResourceID {
				drop = duplicated("resource-id", a.ResourceID)
			}
		case locator.IOSAttributes:
			if c.Strategy == locator.StrategyAccessibilityID {
				drop = duplicated("name", a.Name)
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	return out
}
