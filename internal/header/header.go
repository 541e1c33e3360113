// Package header provides an ordered header collection with lenient,
// case-insensitive lookup.
package header

import (
	"net/http"
	"sort"
	"strings"
)

// ContentLength is the header that is never copied into an outbound request.
const ContentLength = "Content-Length"

// Entry is a single header name/value pair.
type Entry struct {
	Name  string
	Value string
}

// Headers is an ordered list of entries. Names may repeat.
type Headers []Entry

// Matches reports whether two header names are equal after trimming
// surrounding whitespace and ignoring case.
func Matches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsContentLength reports whether name refers to Content-Length.
func IsContentLength(name string) bool {
	return Matches(name, ContentLength)
}

// Add appends an entry.
func (h *Headers) Add(name, value string) {
	*h = append(*h, Entry{Name: name, Value: value})
}

// Set replaces the value of the first entry whose trimmed name equals the
// trimmed name exactly, or appends a new entry.
func (h *Headers) Set(name, value string) {
	key := strings.TrimSpace(name)
	for i, e := range *h {
		if strings.TrimSpace(e.Name) == key {
			(*h)[i].Value = value
			return
		}
	}
	h.Add(key, value)
}

// Find returns the first entry matching name.
func (h Headers) Find(name string) (Entry, bool) {
	for _, e := range h {
		if Matches(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// Value returns the value of the first entry matching name.
func (h Headers) Value(name string) (string, bool) {
	e, ok := h.Find(name)
	if !ok {
		return "", false
	}
	return e.Value, true
}

// Len reports the number of entries.
func (h Headers) Len() int {
	return len(h)
}

// HTTP converts h into an http.Header, preserving repeated names.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, e := range h {
		out.Add(strings.TrimSpace(e.Name), e.Value)
	}
	return out
}

// FromHTTP converts an http.Header into Headers ordered by name. Multiple
// values of one name are joined with ", ".
func FromHTTP(src http.Header) Headers {
	if len(src) == 0 {
		return nil
	}
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Headers, 0, len(names))
	for _, name := range names {
		out = append(out, Entry{Name: name, Value: strings.Join(src[name], ", ")})
	}
	return out
}
