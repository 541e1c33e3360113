package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drp-proxy-go/internal/config"
	"drp-proxy-go/internal/metrics"
)

// RegisterRoutes wires the health endpoints, the optional metrics endpoint and
// the proxy routes of the configured mode onto the Echo instance.
// m may be nil when metrics are disabled.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, health *HealthHandler, m *metrics.Metrics) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	if m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	switch cfg.Server.Mode {
	case config.ModeWeb:
		e.GET("/get/", proxy.Get)
		e.GET("/get/*", proxy.Get)
		e.POST("/post/", proxy.Envelope)
	default:
		e.Any("/*", proxy.Local)
	}
}
