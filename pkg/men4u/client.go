package men4u

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/men4u-admin/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL   = "https://men4u.xyz/v2"
	DefaultAppSource = "admin_dashboard"

	defaultTimeout                 = 30 * time.Second
	defaultLoginPath               = "/common/login"
	defaultVerifyOTPPath           = "/common/verify_otp"
	errorBodyReadLimit       int64 = 4096
	responseBodyReadLimit    int64 = 8 << 20
	noAuthenticationTokenMsg       = "No authentication token available"
)

// ErrNoToken is returned before any network call when the caller holds no credential.
var ErrNoToken = pkgerrors.New(pkgerrors.CodeUnauthorized, noAuthenticationTokenMsg)

// Observer receives one observation per upstream call. A zero status means no response arrived.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

// Client talks to the men4u REST API on behalf of a signed-in operator.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	appSource     string
	loginPath     string
	verifyOTPPath string
	observer      Observer
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithAppSource overrides the app_source tag sent with scoped requests.
func WithAppSource(source string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(source)
		if trimmed != "" {
			c.appSource = trimmed
		}
	}
}

// WithLoginPaths overrides the OTP request and verification paths.
func WithLoginPaths(loginPath, verifyPath string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(loginPath); p != "" {
			c.loginPath = p
		}
		if p := strings.TrimSpace(verifyPath); p != "" {
			c.verifyOTPPath = p
		}
	}
}

// WithObserver attaches a metrics hook.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewHTTPClient returns an HTTP client whose transport is traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewClient builds the men4u client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	client := &Client{
		baseURL:       DefaultBaseURL,
		appSource:     DefaultAppSource,
		loginPath:     defaultLoginPath,
		verifyOTPPath: defaultVerifyOTPPath,
	}
	WithBaseURL(baseURL)(client)

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = NewHTTPClient(defaultTimeout)
	}

	parsed, err := url.Parse(client.baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("men4u base url must be absolute, got %q", client.baseURL)
	}
	client.baseURL = strings.TrimRight(client.baseURL, "/")

	return client, nil
}

// AppSource returns the app_source tag attached to scoped requests.
func (c *Client) AppSource() string {
	return c.appSource
}

// APIError is the non-2xx response of one upstream call.
type APIError struct {
	Status  int
	Path    string
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("men4u %s: status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("men4u %s: status %d", e.Path, e.Status)
}

// StatusCode returns the upstream HTTP status.
func (e *APIError) StatusCode() int { return e.Status }

// Endpoint returns the upstream path template.
func (e *APIError) Endpoint() string { return e.Path }

// request describes one upstream call. endpoint is the path template used for
// metrics and errors; path is the concrete request path.
type request struct {
	method   string
	endpoint string
	path     string
	token    string
	public   bool
	body     any

	// multipart uploads set these instead of body.
	rawBody     io.Reader
	contentType string
}

// Ack is the plain {"detail": "..."} confirmation most mutations return.
type Ack struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "men4u client not configured")
	}
	token := strings.TrimSpace(req.token)
	if !req.public && token == "" {
		return nil, ErrNoToken
	}
	if req.endpoint == "" {
		req.endpoint = req.path
	}

	var body io.Reader
	contentType := "application/json"
	switch {
	case req.rawBody != nil:
		body = req.rawBody
		if req.contentType != "" {
			contentType = req.contentType
		}
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal men4u request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build men4u request")
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req.endpoint, 0, started)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("men4u %s: %w", req.endpoint, err), "")
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(req.endpoint, resp.StatusCode, started)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Path:    req.endpoint,
			Message: extractMessage(raw),
			Body:    strings.TrimSpace(string(raw)),
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeForStatus(resp.StatusCode), apiErr, apiErr.Message)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("men4u %s: read body: %w", req.endpoint, err), "")
	}
	return raw, nil
}

func (c *Client) observe(endpoint string, status int, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, time.Since(started))
	}
}

// call performs req and decodes the body into out when out is non-nil.
func (c *Client) call(ctx context.Context, req request, out any) error {
	raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decodeError(req.endpoint, err)
	}
	return nil
}

func decodeError(endpoint string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("men4u %s: decode response: %w", endpoint, err), "")
}

// extractMessage pulls the human readable failure out of an error body. The API
// uses detail, message or msg depending on the endpoint; validation failures
// carry detail as a list of {msg} objects.
func extractMessage(raw []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "msg"} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if msg := messageFrom(value); msg != "" {
			return msg
		}
	}
	return ""
}

func messageFrom(value json.RawMessage) string {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(value, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if m := strings.TrimSpace(item.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// decodeList accepts either a bare JSON array or an object carrying the array
// under one of keys.
func decodeList[T any](endpoint string, raw []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, decodeError(endpoint, err)
		}
		return nonNil(items), nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, decodeError(endpoint, err)
	}
	for _, key := range keys {
		value, ok := wrapper[key]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || string(value) == "null" {
			return []T{}, nil
		}
		var items []T
		if err := json.Unmarshal(value, &items); err != nil {
			return nil, decodeError(endpoint, err)
		}
		return nonNil(items), nil
	}
	return nil, decodeError(endpoint, errors.New("response carries no list"))
}

// decodeObject unwraps {"data": {...}} envelopes and otherwise decodes the body itself.
func decodeObject(endpoint string, raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil {
		data := bytes.TrimSpace(wrapper.Data)
		if len(data) > 0 && data[0] == '{' {
			trimmed = data
		}
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "")
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return decodeError(endpoint, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
