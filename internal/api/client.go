// Package api is the HTTP client for the news backend. One Client is built at
// startup and shared by every page for the life of the process.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/validation"
)

const (
	headlinesPath = "/api/headlines"
	searchPath    = "/api/search"
	filtersPath   = "/api/filters"
	healthPath    = "/health"

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 8 << 20
)

type Client struct {
	baseURL   *url.URL
	client    *http.Client
	userAgent string
}

func NewClient(cfg config.APIConfig) (*Client, error) {
	normalized, err := validation.NewBaseURLValidator().ValidateAndNormalize(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	base, err := url.Parse(strings.TrimRight(normalized, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   base,
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Headlines fetches top headlines. params carries page, page_size and
// optionally category.
func (c *Client) Headlines(ctx context.Context, params url.Values) (*ResultPage, error) {
	var page ResultPage
	if err := c.get(ctx, headlinesPath, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search runs a keyword search. params carries q plus any of language,
// from, to, sortBy, page and page_size.
func (c *Client) Search(ctx context.Context, params url.Values) (*ResultPage, error) {
	var page ResultPage
	if err := c.get(ctx, searchPath, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Filters(ctx context.Context) (*FilterOptions, error) {
	var opts FilterOptions
	if err := c.get(ctx, filtersPath, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var body map[string]any
	if err := c.get(ctx, healthPath, nil, &body); err != nil {
		return nil, err
	}
	h := &Health{Status: "unknown", Extra: body}
	if s, ok := body["status"].(string); ok && s != "" {
		h.Status = s
	}
	return h, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.endpoint(path, params)
	log := debuglog.WithFields(map[string]any{"path": path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warnf("request failed after %s: %v", time.Since(start), err)
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warnf("reading body failed: %v", err)
		return newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		log.Warnf("backend returned %d: %s", resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Errorf("decoding response: %v", err)
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: GenericMessage, Err: err}
	}

	log.Debugf("%s ok in %s", endpoint, time.Since(start))
	return nil
}
