package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"drp-proxy-go/internal/middleware"
)

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.Use(middleware.RateLimit(1))
	e.POST("/post/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/post/", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", rec.Code, http.StatusOK)
	}

	for i := 0; i < 10; i++ {
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/post/", http.NoBody))
		if rec.Code == http.StatusTooManyRequests {
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["error"] != "rate limit exceeded" {
				t.Errorf("error = %q, want %q", body["error"], "rate limit exceeded")
			}
			return
		}
	}
	t.Error("expected a 429 response after the burst, got none")
}
