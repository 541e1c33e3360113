package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"drp-proxy-go/internal/metrics"
)

// MetricsConfig configures the metrics middleware.
type MetricsConfig struct {
	Metrics *metrics.Metrics
	// Skipper excludes requests from measurement.
	Skipper echomw.Skipper
}

// Metrics records inbound request counts, latency and concurrency.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return MetricsWithConfig(MetricsConfig{Metrics: m})
}

// MetricsWithConfig is Metrics with a custom configuration.
func MetricsWithConfig(cfg MetricsConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomw.DefaultSkipper
	}
	m := cfg.Metrics

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			req := c.Request()
			labels := []string{
				metrics.NormalizeMethod(req.Method),
				strconv.Itoa(statusOf(c, err)),
				routeLabel(req),
			}
			m.RequestsTotal.WithLabelValues(labels...).Inc()
			m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// SkipPath returns a Skipper matching exactly one request path.
func SkipPath(path string) echomw.Skipper {
	return func(c echo.Context) bool {
		return c.Request().URL.Path == path
	}
}

// statusOf resolves the status that will be sent. An *echo.HTTPError is
// written later by the central error handler.
func statusOf(c echo.Context, err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return c.Response().Status
}

// routeLabel collapses forward-proxy targets into one label so arbitrary
// upstream hosts never become label values.
func routeLabel(req *http.Request) string {
	if req.URL.IsAbs() {
		return metrics.ForwardLabel
	}
	return metrics.NormalizePath(req.URL.Path)
}
