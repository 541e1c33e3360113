package translate

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"drp-proxy-go/internal/header"
	"drp-proxy-go/internal/model"
	"drp-proxy-go/internal/validation"
)

// FromRequest builds a request from an inbound request addressed to its final
// destination, as a forward proxy receives it. No validation is performed and
// the body is copied without re-encoding.
func (t *Translator) FromRequest(r *http.Request) (*model.ProxyRequest, error) {
	endpoint := r.RequestURI
	if r.URL != nil && (r.URL.IsAbs() || endpoint == "") {
		endpoint = r.URL.String()
	}

	req, err := newRequest(r.Method, endpoint)
	if err != nil {
		return nil, err
	}
	copyHeaders(req, header.FromHTTP(r.Header), false)

	if req.EnclosesEntity() {
		var data []byte
		if r.Body != nil {
			data, err = io.ReadAll(r.Body)
			if err != nil {
				return nil, fmt.Errorf("read inbound body: %w", err)
			}
		}
		req.Body = &model.Entity{Content: data, ContentType: r.Header.Get("Content-Type")}
	}

	t.logger.Debug("translated inbound request",
		"method", req.Method,
		"endpoint", req.Endpoint,
	)
	return req, nil
}

// FromURL builds a GET request for rawURL carrying the given headers. Header
// entries named Content-Length or with a blank name are skipped; nil headers
// yield a request without headers.
func (t *Translator) FromURL(headers header.Headers, rawURL string) (*model.ProxyRequest, error) {
	endpoint := strings.TrimSpace(rawURL)
	if validation.IsEmpty(endpoint) || !t.validURL(endpoint) {
		log := validation.New()
		log.Add(MsgEndpointRequired)
		return nil, newValidationError(log)
	}

	req, err := newRequest(http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	copyHeaders(req, headers, true)

	t.logger.Debug("translated url", "endpoint", req.Endpoint, "headers", req.Header.Len())
	return req, nil
}
