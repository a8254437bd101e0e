package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/common"
	"github.com/dmitrijs2005/chirp/internal/logging"
	"golang.org/x/net/publicsuffix"
)

// newCookieJar is a test seam for the session cookie jar.
var newCookieJar = func() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Options configures a Client. Only BaseURL is required.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Navigator  Navigator
	Logger     logging.Logger
}

// Client is the Remote API Gateway.
type Client struct {
	base   *url.URL
	http   *http.Client
	nav    Navigator
	logger logging.Logger
}

// New builds a Client. When the supplied http.Client has no cookie jar one
// is installed, since the session and the CSRF token live in cookies.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := newCookieJar()
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	nav := opts.Navigator
	if nav == nil {
		nav = NopNavigator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{base: base, http: hc, nav: nav, logger: logger.With("component", "gateway")}, nil
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Request sends body (JSON-encoded when not nil) and returns the raw JSON
// response, or nil when the response carries no value.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	return c.do(ctx, method, endpoint, r, contentTypeJSON)
}

// PostForm posts url-encoded form values.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()), contentTypeForm)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	if token := c.csrfToken(); token != "" {
		req.Header.Set(common.CSRFHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn(ctx, "request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrUnavailable, err)
	}

	return c.handleResponse(ctx, method, endpoint, resp.StatusCode, data)
}

func (c *Client) handleResponse(ctx context.Context, method, endpoint string, status int, data []byte) (json.RawMessage, error) {
	if status == http.StatusUnauthorized {
		if endpoint == common.SessionEndpoint {
			current := c.nav.CurrentPath()
			if current != common.LoginPath && current != common.SignupPath {
				c.logger.Info(ctx, "session expired, redirecting to login", "from", current)
				c.nav.Redirect(common.LoginPath)
			}
		}
		return nil, &APIError{Status: status, Message: "Unauthorized"}
	}

	if status == http.StatusNoContent {
		return nil, nil
	}

	if status < 200 || status > 299 {
		apiErr := &APIError{Status: status, Message: defaultErrorMessage}
		var details map[string]any
		if err := json.Unmarshal(data, &details); err == nil && details != nil {
			apiErr.Details = details
			if msg, ok := details["message"].(string); ok && msg != "" {
				apiErr.Message = msg
			}
		}
		c.logger.Debug(ctx, "request rejected", "method", method, "endpoint", endpoint, "status", status)
		return nil, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		c.logger.Warn(ctx, "ignoring unparseable response body", "method", method, "endpoint", endpoint)
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// csrfToken reads the anti-forgery token the server set as a cookie.
func (c *Client) csrfToken() string {
	if c.http.Jar == nil {
		return ""
	}
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name != common.CSRFCookieName {
			continue
		}
		if v, err := url.QueryUnescape(ck.Value); err == nil {
			return v
		}
		return ck.Value
	}
	return ""
}

func decode[T any](raw json.RawMessage, err error) (*T, error) {
	if err != nil || raw == nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &v, nil
}

// Get fetches endpoint and decodes the response into T. A nil result with a
// nil error means the server returned no value.
func Get[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	return decode[T](c.Request(ctx, http.MethodGet, endpoint, nil))
}

func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (*T, error) {
	return decode[T](c.Request(ctx, http.MethodPost, endpoint, body))
}

func Put[T any](ctx context.Context, c *Client, endpoint string, body any) (*T, error) {
	return decode[T](c.Request(ctx, http.MethodPut, endpoint, body))
}

// Delete sends a DELETE, optionally with a JSON body, and discards any value.
func Delete(ctx context.Context, c *Client, endpoint string, body any) error {
	_, err := c.Request(ctx, http.MethodDelete, endpoint, body)
	return err
}

func valueOf[T any](p *T, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if p == nil {
		return zero, nil
	}
	return *p, nil
}

var errNoValue = errors.New("server returned no value")

// required turns an empty response into an error for endpoints whose callers
// cannot proceed without the resource.
func required[T any](p *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNoValue
	}
	return p, nil
}
