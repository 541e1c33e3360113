// Package client dispatches translated requests to their endpoints.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"drp-proxy-go/internal/metrics"
	"drp-proxy-go/internal/model"
)

// Timeout bounds connecting, the TLS handshake and waiting for response headers.
const Timeout = 60 * time.Second

// maxRedirects matches net/http's default policy.
const maxRedirects = 10

// ErrTransport wraps every failure to complete an exchange with the endpoint.
var ErrTransport = errors.New("transport failure")

// corsHeaders are added to every response, next to any values the endpoint sent.
var corsHeaders = []string{
	echo.HeaderAccessControlAllowOrigin,
	echo.HeaderAccessControlAllowHeaders,
	echo.HeaderAccessControlAllowMethods,
}

// Dispatcher sends ProxyRequests and stamps responses with permissive CORS headers.
type Dispatcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewDispatcher creates a Dispatcher with fixed timeouts.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewDispatcher(logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   Timeout,
		ResponseHeaderTimeout: Timeout,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Dispatcher{
		httpClient: &http.Client{
			Transport:     transport,
			CheckRedirect: followGetRedirects,
		},
		logger:  logger.With("component", "dispatcher"),
		metrics: m,
	}
}

// followGetRedirects follows redirects of GET requests only; other methods get
// the redirect response itself.
func followGetRedirects(req *http.Request, via []*http.Request) error {
	if via[0].Method != http.MethodGet {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// Dispatch sends pr and returns the endpoint's response. The caller is
// responsible for closing the response body.
func (d *Dispatcher) Dispatch(ctx context.Context, pr *model.ProxyRequest) (*http.Response, error) {
	req, err := d.build(ctx, pr)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("dispatching request",
		"method", req.Method,
		"endpoint", pr.Endpoint,
		"headers", pr.Header.Len(),
	)

	start := time.Now()
	resp, err := d.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if d.metrics != nil {
			d.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
			d.metrics.UpstreamErrors.WithLabelValues(method).Inc()
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if d.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		d.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		d.metrics.UpstreamResponses.WithLabelValues(method, status).Inc()
	}

	for _, name := range corsHeaders {
		resp.Header.Add(name, "*")
	}

	d.logger.Debug("response received",
		"endpoint", pr.Endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (d *Dispatcher) build(ctx context.Context, pr *model.ProxyRequest) (*http.Request, error) {
	var body io.Reader
	if pr.EnclosesEntity() && pr.Body != nil {
		body = bytes.NewReader(pr.Body.Content)
	}

	req, err := http.NewRequestWithContext(ctx, pr.Method, pr.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header = pr.Header.HTTP()
	// The transport negotiates compression itself and decodes the body.
	req.Header.Del("Accept-Encoding")

	if body != nil && req.Header.Get(echo.HeaderContentType) == "" && pr.Body.ContentType != "" {
		req.Header.Set(echo.HeaderContentType, pr.Body.ContentType)
	}
	return req, nil
}
