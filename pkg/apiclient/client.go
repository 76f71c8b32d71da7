// Package apiclient is the single point of HTTP egress to the task management
// API. It fixes the base address, attaches the bearer token of the session to
// every request and recovers from an expired access token by refreshing it and
// resubmitting the request once.
package apiclient

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/taskmanager-client/pkg/session"
)

const (
	DefaultRefreshPath = "token/refresh/"
	DefaultTimeout     = 30 * time.Second

	headerRequestID = "X-Request-Id"
)

type Client struct {
	baseURL       *url.URL
	session       *session.Session
	httpClient    *http.Client
	refreshPath   string
	userAgent     string
	onAuthExpired func(context.Context, *AuthError)

	refreshGroup singleflight.Group
	telemetry    *telemetry
	now          func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for all requests, including the
// refresh call.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRefreshPath sets the refresh endpoint, relative to the base address. An
// empty path keeps DefaultRefreshPath.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithAuthExpiredHook registers a function called whenever a 401 could not be
// recovered. The client itself neither clears the stored tokens nor retries;
// the hook lets callers apply one policy instead of handling it per call.
func WithAuthExpiredHook(fn func(context.Context, *AuthError)) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	tel, err := newTelemetry()
	if err != nil {
		return nil, fmt.Errorf("initialising telemetry: %w", err)
	}

	c := &Client{
		baseURL:     u,
		session:     sess,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		refreshPath: DefaultRefreshPath,
		telemetry:   tel,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Request describes an API call. It is replayable: the body is encoded once
// and every attempt is built from the same bytes.
type Request struct {
	Method string
	// Path is relative to the base address, e.g. "tasks/12/".
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// SkipAuth sends the request without the session's bearer token.
	SkipAuth bool
	// SkipRefresh returns a 401 as is instead of refreshing the access token.
	SkipRefresh bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New("decoding response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

type preparedRequest struct {
	method   string
	path     string
	url      string
	body     []byte
	header   http.Header
	skipAuth bool
}

// Do sends the request. A 2xx answer is returned as a Response; any other
// status as an *HTTPStatusError and a transport failure as a *NetworkError.
// A 401 is answered by refreshing the access token and resubmitting the
// request exactly once; the outcome of that retry is returned as is. When the
// refresh is impossible or fails, an *AuthError wrapping the original 401 is
// returned.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	p, err := c.prepare(r)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, p, "")
	var statusErr *HTTPStatusError
	if r.SkipRefresh || !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	slogctx.Info(ctx, "Access token rejected, refreshing", "method", p.method, "path", p.path)

	access, err := c.refreshAccessToken(ctx)
	var authErr *AuthError
	if errors.As(err, &authErr) {
		authErr.Original = statusErr
		slogctx.Warn(ctx, "Could not recover from an unauthorised response", "reason", authErr.Reason, "error", authErr.Err)
		if c.onAuthExpired != nil {
			c.onAuthExpired(ctx, authErr)
		}

		return nil, authErr
	}
	if err != nil {
		return nil, err
	}

	return c.send(ctx, p, access)
}

func (c *Client) prepare(r *Request) (*preparedRequest, error) {
	if r == nil {
		return nil, errors.New("request is nil")
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := c.resolve(r.Path)
	if err != nil {
		return nil, err
	}
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	var body []byte
	if r.Body != nil {
		body, err = json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}
	if c.userAgent != "" && header.Get("User-Agent") == "" {
		header.Set("User-Agent", c.userAgent)
	}

	return &preparedRequest{
		method:   method,
		path:     r.Path,
		url:      u.String(),
		body:     body,
		header:   header,
		skipAuth: r.SkipAuth,
	}, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing request path: %w", err)
	}
	if rel.IsAbs() || rel.Host != "" {
		return nil, fmt.Errorf("request path %q must be relative to the base URL", path)
	}

	return c.baseURL.ResolveReference(rel), nil
}

// send performs one attempt. A non-empty bearer overrides any Authorization
// header of the request.
func (c *Client) send(ctx context.Context, p *preparedRequest, bearer string) (*Response, error) {
	ctx, span := c.telemetry.tracer.Start(ctx, p.method+" "+p.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", p.method),
			attribute.String("url.full", p.url),
			attribute.Bool("retry", bearer != ""),
		),
	)
	defer span.End()

	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = p.header.Clone()
	req.Header.Set(headerRequestID, uuid.NewString())

	switch {
	case bearer != "":
		req.Header.Set("Authorization", "Bearer "+bearer)
	case !p.skipAuth && req.Header.Get("Authorization") == "":
		token, err := c.session.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	slogctx.Debug(ctx, "Sending request", "method", p.method, "path", p.path, "request_id", req.Header.Get(headerRequestID))

	return c.roundTrip(ctx, span, req)
}

func (c *Client) roundTrip(ctx context.Context, span trace.Span, req *http.Request) (*Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.telemetry.recordRequest(ctx, req.Method, 0, start)
		span.SetStatus(codes.Error, err.Error())
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.telemetry.recordRequest(ctx, req.Method, resp.StatusCode, start)
		span.SetStatus(codes.Error, err.Error())
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.telemetry.recordRequest(ctx, req.Method, resp.StatusCode, start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return nil, &HTTPStatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       data,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// doJSON sends r and decodes a 2xx body into T. An empty body yields the zero
// value of T.
func doJSON[T any](ctx context.Context, c *Client, r *Request) (T, error) {
	var out T

	resp, err := c.Do(ctx, r)
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}

	return out, nil
}
