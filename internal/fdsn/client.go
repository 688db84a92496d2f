// Package fdsn implements thin clients for the FDSN web services used when
// turning a request plan into actual data: station metadata queries, data
// availability extents, waveform retrieval, and the IRIS federator routing
// service.
package fdsn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seisworks/seisfetch/internal/cache"
)

// ErrNoData is returned when a service answers 204: the request was valid
// but nothing matches it.
var ErrNoData = fmt.Errorf("fdsn: no data matches the request")

const userAgent = "seisfetch/1.0"

// Known FDSN datacenters by short name, mirroring the usual client
// mappings. Values are the service roots; individual services hang off
// <root>/fdsnws/<service>/1.
var Datacenters = map[string]string{
	"IRIS":    "https://service.iris.edu",
	"GEOFON":  "https://geofon.gfz-potsdam.de",
	"ORFEUS":  "https://www.orfeus-eu.org",
	"INGV":    "https://webservices.ingv.it",
	"ETH":     "https://eida.ethz.ch",
	"USGS":    "https://earthquake.usgs.gov",
	"BGR":     "https://eida.bgr.de",
	"NCEDC":   "https://service.ncedc.org",
	"SCEDC":   "https://service.scedc.caltech.edu",
	"AUSPASS": "https://auspass.edu.au",
}

// Client is a shared HTTP client for all FDSN services, with an optional
// response cache for idempotent text queries.
type Client struct {
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCache attaches a response cache for GET queries.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// NewClient constructs a Client with a 120s default timeout and no cache.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		cache:      cache.Noop{},
		cacheTTL:   time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.Noop{}
	}
	return c
}

// get performs a GET against rawURL with the given query parameters,
// consulting the response cache first. A 204 response maps to ErrNoData.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}

	if body, ok := c.cache.Get(ctx, full); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("fdsn: creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fdsn: fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, ErrNoData
	default:
		return nil, fmt.Errorf("fdsn: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fdsn: reading response body: %w", err)
	}

	c.cache.Set(ctx, full, body, c.cacheTTL)
	return body, nil
}

// getUncached is get without cache involvement, for waveform payloads that
// are written straight to disk.
func (c *Client) getUncached(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("fdsn: creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fdsn: fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, ErrNoData
	default:
		return nil, fmt.Errorf("fdsn: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}

// serviceURL joins a datacenter root with a service query endpoint.
func serviceURL(root, service string) string {
	return fmt.Sprintf("%s/fdsnws/%s/1/query", root, service)
}

// queryURL turns a full service URL, as handed out by the routing service
// (e.g. http://service.iris.edu/fdsnws/dataselect/1/), into its query
// endpoint.
func queryURL(service string) string {
	return strings.TrimSuffix(service, "/") + "/query"
}
