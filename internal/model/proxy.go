// Package model defines shared types for the broker.
package model

import (
	"net/http"

	"drp-proxy-go/internal/header"
)

// Entity is the body of an outbound request.
type Entity struct {
	Content     []byte
	ContentType string
}

// ProxyRequest is a validated description of an outbound request.
type ProxyRequest struct {
	Endpoint string
	Method   string
	Header   header.Headers
	Body     *Entity
}

// EnclosesEntity reports whether the method carries a body container.
func (r *ProxyRequest) EnclosesEntity() bool {
	return r.Method == http.MethodPost
}
