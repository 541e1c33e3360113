package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestStripHopByHop(t *testing.T) {
	e := echo.New()
	e.Use(StripHopByHop())

	var got http.Header
	e.POST("/", func(c echo.Context) error {
		got = c.Request().Header.Clone()
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.Header.Set("Connection", "keep-alive, X-Session-Hop")
	req.Header.Set("X-Session-Hop", "1")
	req.Header.Set("Proxy-Authorization", "Basic abc")
	req.Header.Set("Proxy-Connection", "keep-alive")
	req.Header.Set("X-Kept", "yes")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	for _, name := range []string{"Connection", "X-Session-Hop", "Proxy-Authorization", "Proxy-Connection"} {
		if v := got.Get(name); v != "" {
			t.Errorf("%s should be stripped, got %q", name, v)
		}
	}
	if v := got.Get("X-Kept"); v != "yes" {
		t.Errorf("X-Kept = %q, want %q", v, "yes")
	}
}
