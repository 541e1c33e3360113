package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"drp-proxy-go/internal/metrics"
)

// requestSeries returns the label sets of every drp_proxy_http_requests_total series.
func requestSeries(t *testing.T, m *metrics.Metrics) []map[string]string {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var series []map[string]string
	for _, f := range families {
		if f.GetName() != "drp_proxy_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			series = append(series, labels)
		}
	}
	return series
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestMetrics_Labels(t *testing.T) {
	tests := []struct {
		name   string
		route  func(e *echo.Echo)
		method string
		target string
		want   map[string]string
	}{
		{
			name:   "envelope post",
			route:  func(e *echo.Echo) { e.POST("/post/", ok) },
			method: http.MethodPost,
			target: "/post/",
			want:   map[string]string{"method": "POST", "status_code": "200", "path_prefix": "/post"},
		},
		{
			name: "http error status",
			route: func(e *echo.Echo) {
				e.GET("/get/*", func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })
			},
			method: http.MethodGet,
			target: "/get/http://example.com",
			want:   map[string]string{"method": "GET", "status_code": "418", "path_prefix": "/get"},
		},
		{
			name:   "unknown method",
			route:  func(e *echo.Echo) { e.Any("/post/", ok) },
			method: "XYZZY",
			target: "/post/",
			want:   map[string]string{"method": "other", "status_code": "200", "path_prefix": "/post"},
		},
		{
			name:   "router not found",
			route:  func(*echo.Echo) {},
			method: http.MethodGet,
			target: "/nonexistent",
			want:   map[string]string{"method": "GET", "status_code": "404", "path_prefix": "other"},
		},
		{
			name:   "forward proxy target",
			route:  func(e *echo.Echo) { e.Any("/*", ok) },
			method: http.MethodGet,
			target: "http://upstream.example/get/thing",
			want:   map[string]string{"method": "GET", "status_code": "200", "path_prefix": metrics.ForwardLabel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			e := echo.New()
			e.Use(Metrics(m))
			tt.route(e)

			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, http.NoBody))

			series := requestSeries(t, m)
			if len(series) != 1 {
				t.Fatalf("series = %v, want exactly one", series)
			}
			for k, v := range tt.want {
				if series[0][k] != v {
					t.Errorf("label %s = %q, want %q", k, series[0][k], v)
				}
			}
		})
	}
}

func TestMetrics_RecordsDuration(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(Metrics(m))
	e.GET("/healthz", ok)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "drp_proxy_http_request_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			if metric.GetHistogram().GetSampleCount() > 0 {
				return
			}
		}
	}
	t.Error("expected drp_proxy_http_request_duration_seconds with at least one sample")
}

func TestMetrics_SkipsScrapes(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(MetricsWithConfig(MetricsConfig{Metrics: m, Skipper: SkipPath("/metrics")}))
	e.GET("/metrics", ok)
	e.GET("/healthz", ok)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if series := requestSeries(t, m); len(series) != 0 {
		t.Fatalf("scrape recorded: %v", series)
	}

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if series := requestSeries(t, m); len(series) != 1 {
		t.Errorf("series = %v, want one for /healthz", series)
	}
}
