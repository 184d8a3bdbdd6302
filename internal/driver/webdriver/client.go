// Package webdriver is a thin W3C WebDriver / Appium HTTP client implementing
// the driver.Session and driver.Element query surfaces the scan pipeline
// consumes.
package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Winify/webdriverio-mcp/internal/driver"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	_ driver.Session = (*Client)(nil)
	_ driver.Element = (*element)(nil)
)

// w3cElementKey is the W3C WebDriver element identifier key.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Options configure a Client.
type Options struct {
	// ServerURL is the WebDriver server base URL, e.g. "http://127.0.0.1:4723".
	ServerURL string
	// Timeout bounds each HTTP round-trip. Zero means 30s.
	Timeout time.Duration
	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64
	// Logger receives request-level debug logging. Nil means no-op.
	Logger *zap.Logger
}

// Client talks to one WebDriver session over HTTP.
type Client struct {
	serverURL string
	sessionID string
	platform  string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func newClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Client{
		serverURL: strings.TrimSuffix(opts.ServerURL, "/"),
		http:      &http.Client{Timeout: timeout},
		limiter:   limiter,
		logger:    logger.Named("webdriver"),
	}
}

// NewSession creates a fresh session with the given capabilities.
func NewSession(ctx context.Context, opts Options, capabilities map[string]interface{}) (*Client, error) {
	c := newClient(opts)

	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}
	var value struct {
		SessionID    string                 `json:"sessionId"`
		Capabilities map[string]interface{} `json:"capabilities"`
	}
	if err := c.do(ctx, http.MethodPost, "/session", body, &value); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if value.SessionID == "" {
		return nil, fmt.Errorf("create session: %w", driver.ErrNoSession)
	}
	c.sessionID = value.SessionID
	if p, ok := value.Capabilities["platformName"].(string); ok {
		c.platform = strings.ToLower(p)
	}
	c.logger.Debug("session created",
		zap.String("session_id", c.sessionID),
		zap.String("platform", c.platform))
	return c, nil
}

// Attach binds the client to an already-running session, e.g. one opened by
// an interactive tool. No handshake is performed; the first query will
// surface driver.ErrNoSession if the session is gone.
func Attach(opts Options, sessionID, platform string) *Client {
	c := newClient(opts)
	c.sessionID = sessionID
	c.platform = strings.ToLower(platform)
	return c
}

// Close deletes the session.
func (c *Client) Close(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, "/session/"+c.sessionID, nil, nil)
	c.sessionID = ""
	return err
}

// SessionID returns the bound session identifier.
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) Android() bool { return c.platform == "android" }
func (c *Client) IOS() bool     { return c.platform == "ios" }

// PageSource fetches the raw markup snapshot of the current UI.
func (c *Client) PageSource(ctx context.Context) (string, error) {
	var src string
	if err := c.session(ctx, http.MethodGet, "/source", nil, &src); err != nil {
		return "", err
	}
	return src, nil
}

// WindowSize fetches the viewport dimensions.
func (c *Client) WindowSize(ctx context.Context) (driver.Size, error) {
	var rect struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := c.session(ctx, http.MethodGet, "/window/rect", nil, &rect); err != nil {
		return driver.Size{}, err
	}
	return driver.Size{Width: rect.Width, Height: rect.Height}, nil
}

// FindElements runs one location query and returns handles in document order.
func (c *Client) FindElements(ctx context.Context, using, value string) ([]driver.Element, error) {
	body := map[string]string{"using": using, "value": value}
	var raw []map[string]string
	if err := c.session(ctx, http.MethodPost, "/elements", body, &raw); err != nil {
		return nil, err
	}
	elements := make([]driver.Element, 0, len(raw))
	for _, m := range raw {
		id := m[w3cElementKey]
		if id == "" {
			// Legacy servers answer with {"ELEMENT": id}.
			id = m["ELEMENT"]
		}
		if id == "" {
			continue
		}
		elements = append(elements, &element{c: c, id: id})
	}
	return elements, nil
}

// session issues a request under the bound session prefix.
func (c *Client) session(ctx context.Context, method, path string, body, out interface{}) error {
	if c.sessionID == "" {
		return driver.ErrNoSession
	}
	return c.do(ctx, method, "/session/"+c.sessionID+path, body, out)
}

// do performs one paced HTTP round-trip and unmarshals the W3C value
// envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := codec.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := codec.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		return c.protocolError(resp.StatusCode, envelope.Value)
	}
	if out != nil && len(envelope.Value) > 0 {
		if err := codec.Unmarshal(envelope.Value, out); err != nil {
			return fmt.Errorf("%s %s: decode value: %w", method, path, err)
		}
	}
	return nil
}

// protocolError maps the W3C error document onto the pipeline's sentinel
// errors so callers can tell session loss from a stale element.
func (c *Client) protocolError(status int, value json.RawMessage) error {
	var werr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = codec.Unmarshal(value, &werr)

	switch werr.Error {
	case "invalid session id", "no such window", "session not created":
		return fmt.Errorf("%s: %w", werr.Message, driver.ErrNoSession)
	case "stale element reference", "no such element":
		return fmt.Errorf("%s: %w", werr.Message, driver.ErrStaleElement)
	}
	if werr.Error == "" {
		return fmt.Errorf("webdriver request failed with status %d", status)
	}
	return fmt.Errorf("webdriver error %q: %s", werr.Error, werr.Message)
}

// element is a live element handle bound to its parent client.
type element struct {
	c  *Client
	id string
}

func (e *element) path(suffix string) string { return "/element/" + e.id + suffix }

func (e *element) Displayed(ctx context.Context) (bool, error) {
	var v bool
	err := e.c.session(ctx, http.MethodGet, e.path("/displayed"), nil, &v)
	return v, err
}

func (e *element) TagName(ctx context.Context) (string, error) {
	var v string
	err := e.c.session(ctx, http.MethodGet, e.path("/name"), nil, &v)
	return v, err
}

func (e *element) Text(ctx context.Context) (string, error) {
	var v string
	err := e.c.session(ctx, http.MethodGet, e.path("/text"), nil, &v)
	return v, err
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	// Appium serializes absent attributes as JSON null; surface that as the
	// literal token the candidate generator already treats as unusable.
	var v *string
	err := e.c.session(ctx, http.MethodGet, e.path("/attribute/"+name), nil, &v)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "null", nil
	}
	return *v, nil
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	var v bool
	err := e.c.session(ctx, http.MethodGet, e.path("/enabled"), nil, &v)
	return v, err
}

func (e *element) rect(ctx context.Context) (x, y, w, h int, err error) {
	var rect struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := e.c.session(ctx, http.MethodGet, e.path("/rect"), nil, &rect); err != nil {
		return 0, 0, 0, 0, err
	}
	return int(rect.X), int(rect.Y), int(rect.Width), int(rect.Height), nil
}

func (e *element) Location(ctx context.Context) (driver.Point, error) {
	x, y, _, _, err := e.rect(ctx)
	return driver.Point{X: x, Y: y}, err
}

func (e *element) Size(ctx context.Context) (driver.Size, error) {
	_, _, w, h, err := e.rect(ctx)
	return driver.Size{Width: w, Height: h}, err
}
