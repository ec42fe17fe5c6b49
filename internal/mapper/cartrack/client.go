// Package cartrack is the outbound adapter for the Cartrack fleet REST API.
package cartrack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/internal/pkg/metrics"
	"github.com/autopeer-io/livemapper/pkg/log"
	"github.com/autopeer-io/livemapper/pkg/options"
)

const (
	// DefaultTimeout bounds a whole status request, body included.
	DefaultTimeout = 5 * time.Second
	// MaxResponseLength caps the accepted status body size.
	MaxResponseLength = 10 << 20
)

var _ core.StatusFetcher = (*Client)(nil)

// Client fetches the status of one configured vehicle.
type Client struct {
	statusURL  string
	authToken  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a client for {api-url}/vehicles/{vehicle-id}/status.
// Redirects are not followed, so a 3xx answer surfaces as an upstream error.
func NewClient(opts *options.CartrackOptions, clientOpts ...Option) *Client {
	c := &Client{
		statusURL: StatusURL(opts.APIURL, opts.VehicleID),
		authToken: opts.AuthToken,
		timeout:   DefaultTimeout,
		httpClient: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	for _, o := range clientOpts {
		o(c)
	}

	return c
}

// StatusURL joins the API base URL and the vehicle status path.
func StatusURL(baseURL, vehicleID string) string {
	return fmt.Sprintf("%s/vehicles/%s/status", strings.TrimRight(baseURL, "/"), url.PathEscape(vehicleID))
}

// FetchStatus performs one GET against the status endpoint. Non-2xx answers
// return *core.UpstreamHTTPError carrying the upstream code and body.
func (c *Client) FetchStatus(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cartrack request: %w", err)
	}
	req.Header.Set("Authorization", c.authToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug("Fetching vehicle status", "url", c.statusURL, "headers", req.Header)

	start := time.Now()
	body, code, err := c.do(req)
	metrics.UpstreamLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("cartrack request timed out after %s: %w", c.timeout, err)
		}
		return nil, fmt.Errorf("cartrack request failed: %w", err)
	}

	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		metrics.UpstreamRequestsTotal.WithLabelValues("http_error").Inc()
		log.Warn("Cartrack returned an error status", "code", code, "url", c.statusURL)
		return nil, &core.UpstreamHTTPError{StatusCode: code, Body: string(body)}
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invalid JSON in cartrack response: %w", err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("success").Inc()
	log.Debug("Fetched vehicle status", "bytes", len(body), "duration", time.Since(start))
	return payload, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLength+1))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseLength {
		return nil, 0, fmt.Errorf("response body exceeds %d bytes", MaxResponseLength)
	}

	return body, resp.StatusCode, nil
}
