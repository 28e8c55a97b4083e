package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nexus/internal/client/events"
	"nexus/internal/session"
	"nexus/pkg/protocol"
)

const (
	// PathPrefix is the versioned API prefix appended to the base origin.
	PathPrefix = "/api"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "nexus-cli"
)

// Client is the request core shared by every resource client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	bus        *events.Bus
	userAgent  string

	Auth         *AuthService
	Campaigns    *CampaignsService
	Chat         *ChatService
	Support      *SupportService
	Admin        *AdminService
	Integrations *IntegrationsService
	Health       *HealthService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEventBus publishes request lifecycle events on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(c *Client) {
		c.bus = bus
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend at baseURL, e.g.
// "https://api.example.com". The session supplies the bearer token.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	if sess == nil {
		sess = session.New(session.NewMemoryStore())
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    sess,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{client: c}
	c.Campaigns = &CampaignsService{client: c}
	c.Chat = &ChatService{client: c}
	c.Support = &SupportService{client: c}
	c.Admin = &AdminService{client: c}
	c.Integrations = &IntegrationsService{client: c}
	c.Health = &HealthService{client: c}
	return c
}

// BaseURL returns the backend origin without the API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the session the client reads its token from.
func (c *Client) Session() *session.Session {
	return c.session
}

type requestOptions struct {
	headers  http.Header
	rawQuery string
}

// RequestOption customizes a single Do call.
type RequestOption func(*requestOptions)

// WithHeader sets a request header. Caller headers override the JSON
// content type but never the bearer token.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Set(key, value)
	}
}

// WithQuery appends q as the query string, keys sorted.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) {
		o.rawQuery = q.Encode()
	}
}

// WithRawQuery appends an already encoded query string as is.
func WithRawQuery(query string) RequestOption {
	return func(o *requestOptions) {
		o.rawQuery = query
	}
}

// isAuthEndpoint reports whether endpoint must be called without a token,
// so a stale token can never block a fresh login.
func isAuthEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, "/auth/login") || strings.Contains(endpoint, "/auth/register")
}

// Do performs one call against <base>/api<endpoint>. body, when non-nil,
// is sent as JSON; a 2xx JSON response is decoded into out when out is
// non-nil. Non-2xx responses return *Error; a 401 also clears the stored
// token.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts ...RequestOption) error {
	ro := requestOptions{headers: make(http.Header)}
	for _, opt := range opts {
		opt(&ro)
	}

	target := c.baseURL + PathPrefix + endpoint
	if ro.rawQuery != "" {
		target += "?" + ro.rawQuery
	}
	return c.request(ctx, method, target, endpoint, body, out, ro.headers, !isAuthEndpoint(endpoint))
}

// request builds and sends a call to target. endpoint names the call in
// errors, events and metrics.
func (c *Client) request(ctx context.Context, method, target, endpoint string, body, out any, headers http.Header, withToken bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, values := range headers {
		req.Header[key] = values
	}
	if token, ok := c.session.Token(); ok && withToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, endpoint, out)
}

func (c *Client) send(req *http.Request, endpoint string, out any) error {
	method := req.Method
	resource := resourceOf(endpoint)
	start := time.Now()

	c.bus.Publish(events.Event{
		Type: events.EventRequestStart,
		Data: events.RequestData{Method: method, Endpoint: endpoint},
	})

	status, err := c.roundTrip(req, endpoint, out)
	elapsed := time.Since(start)

	statusLabel := "error"
	if status != 0 {
		statusLabel = strconv.Itoa(status)
	}
	recordRequestDuration(method, resource, statusLabel, elapsed.Seconds())

	c.bus.Publish(events.Event{
		Type: events.EventRequestComplete,
		Data: events.RequestData{
			Method:   method,
			Endpoint: endpoint,
			Status:   status,
			Duration: elapsed,
			Err:      err,
		},
	})
	return err
}

// roundTrip executes req and returns the response status (0 when no
// response arrived) together with the call outcome.
func (c *Client) roundTrip(req *http.Request, endpoint string, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", req.Method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s %s: %w", req.Method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.evictToken(endpoint)
		}
		return resp.StatusCode, &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", req.Method, endpoint, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) evictToken(endpoint string) {
	if err := c.session.ClearToken(); err != nil {
		c.bus.PublishError(err, "clear token after 401")
	}
	c.bus.Publish(events.Event{
		Type: events.EventUnauthorized,
		Data: events.UnauthorizedData{Endpoint: endpoint},
	})
}

// errorMessage extracts the backend's detail text, falling back to
// DefaultErrorMessage for empty, non-JSON or detail-less bodies.
func errorMessage(data []byte) string {
	var body protocol.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Detail == "" {
		return DefaultErrorMessage
	}
	return body.Detail
}

// resourceOf returns the first path segment of endpoint, used as a
// low-cardinality metrics label.
func resourceOf(endpoint string) string {
	endpoint = strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexAny(endpoint, "/?"); i >= 0 {
		endpoint = endpoint[:i]
	}
	if endpoint == "" {
		return "root"
	}
	return endpoint
}

// decodeList normalizes a list response: both a bare JSON array and a
// paginated {"results": [...]} envelope become a plain slice.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}
	var page protocol.Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		return nil, errors.New("decode page: missing results")
	}
	return page.Results, nil
}

// getList performs a GET on a list endpoint and normalizes the result.
func getList[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) ([]T, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, endpoint, nil, &raw, opts...); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}
