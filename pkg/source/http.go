package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// maxDocumentSize bounds template payloads read from upstream.
const maxDocumentSize = 4 << 20

// StatusError reports a non-2xx upstream response. It is terminal: the
// loader does not retry.
type StatusError struct {
	Code int
	URL  string
	Err  error
}

func (e *StatusError) Error() string {
	msg := http.StatusText(e.Code)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("source: GET %s: %d %s", e.URL, e.Code, msg)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode reports the upstream status.
func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusBadGateway
	}
	return e.Code
}

// HTTPClient fetches templates from {base}/templates/{id}.
type HTTPClient struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient injects a custom client (proxies, transports).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout caps each fetch when the client has no timeout of its own.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// NewHTTPClient validates base and builds a client for it.
func NewHTTPClient(base string, opts ...HTTPOption) (*HTTPClient, error) {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("source: invalid base url %q: %w", base, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported scheme %q", parsed.Scheme)
	}

	c := &HTTPClient{base: parsed, client: http.DefaultClient}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 && c.client.Timeout == 0 {
		clone := *c.client
		clone.Timeout = c.timeout
		c.client = &clone
	}
	return c, nil
}

// URL returns the document URL for id.
func (c *HTTPClient) URL(id string) string {
	return c.base.JoinPath("templates", id).String()
}

// Fetch performs the GET and decodes the JSON document.
func (c *HTTPClient) Fetch(ctx context.Context, id string) (model.Template, error) {
	if err := validID(id); err != nil {
		return model.Template{}, err
	}
	target := c.URL(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Template{}, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Template{}, fmt.Errorf("source: GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return model.Template{}, fmt.Errorf("source: read %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, URL: target}
		if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 256 {
			statusErr.Err = errors.New(msg)
		}
		if resp.StatusCode == http.StatusNotFound {
			return model.Template{}, fmt.Errorf("%w: %w", ErrNotFound, statusErr)
		}
		return model.Template{}, statusErr
	}

	tpl, err := Decode(body, FormatJSON, target)
	if err != nil {
		return model.Template{}, err
	}
	if tpl.ID == "" {
		tpl.ID = id
	}
	return tpl, nil
}
