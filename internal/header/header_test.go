package header

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Content-Type", "content-type", true},
		{" Content-Type ", "CONTENT-TYPE", true},
		{"X-Foo", "X-Bar", false},
		{"", "", true},
		{"Accept", "Accept-Language", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.a, tt.b))
		})
	}
}

func TestHeaders_FindFirstMatchWins(t *testing.T) {
	var h Headers
	h.Add("x-token", "one")
	h.Add("X-Token", "two")
	h.Add("Accept", "*/*")

	e, ok := h.Find("  X-TOKEN ")
	require.True(t, ok)
	assert.Equal(t, "x-token", e.Name)
	assert.Equal(t, "one", e.Value)

	v, ok := h.Value("accept")
	require.True(t, ok)
	assert.Equal(t, "*/*", v)

	_, ok = h.Find("Missing")
	assert.False(t, ok)
}

func TestHeaders_Set(t *testing.T) {
	var h Headers
	h.Set("Content-Type", "text/plain")
	h.Set(" Content-Type", "application/json")
	h.Set("content-type", "text/html")

	require.Equal(t, 2, h.Len())
	assert.Equal(t, Entry{Name: "Content-Type", Value: "application/json"}, h[0])
	assert.Equal(t, Entry{Name: "content-type", Value: "text/html"}, h[1])
}

func TestIsContentLength(t *testing.T) {
	assert.True(t, IsContentLength("content-length"))
	assert.True(t, IsContentLength(" Content-Length "))
	assert.False(t, IsContentLength("Content-Type"))
}

func TestFromHTTP(t *testing.T) {
	src := http.Header{}
	src.Add("X-B", "2")
	src.Add("Accept", "text/html")
	src.Add("Accept", "application/json")

	h := FromHTTP(src)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, Entry{Name: "Accept", Value: "text/html, application/json"}, h[0])
	assert.Equal(t, Entry{Name: "X-B", Value: "2"}, h[1])

	assert.Nil(t, FromHTTP(nil))
}

func TestHeaders_HTTP(t *testing.T) {
	h := Headers{
		{Name: " x-one ", Value: "a"},
		{Name: "X-One", Value: "b"},
	}
	out := h.HTTP()
	assert.Equal(t, []string{"a", "b"}, out.Values("X-One"))
}
