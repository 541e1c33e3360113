// Package service wires translation and dispatch together for each inbound shape.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"drp-proxy-go/internal/client"
	"drp-proxy-go/internal/header"
	"drp-proxy-go/internal/metrics"
	"drp-proxy-go/internal/model"
	"drp-proxy-go/internal/translate"
)

// Source modes, used as the "mode" metrics label.
const (
	SourceEnvelope = "envelope"
	SourceRequest  = "request"
	SourceURL      = "url"
)

// Dispatcher sends a translated request.
type Dispatcher interface {
	Dispatch(ctx context.Context, pr *model.ProxyRequest) (*http.Response, error)
}

// ProxyService translates inbound input into outbound requests and dispatches them.
type ProxyService struct {
	translator *translate.Translator
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewProxyService creates a ProxyService. The metrics parameter is optional.
func NewProxyService(tr *translate.Translator, d *client.Dispatcher, m *metrics.Metrics, logger *slog.Logger) *ProxyService {
	return newProxyService(tr, d, m, logger)
}

func newProxyService(tr *translate.Translator, d Dispatcher, m *metrics.Metrics, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		translator: tr,
		dispatcher: d,
		metrics:    m,
		logger:     logger.With("component", "proxy_service"),
	}
}

// ForwardEnvelope dispatches the request described by a JSON envelope.
// ambient headers apply unless the envelope declares its own.
// The caller is responsible for closing the response body.
func (s *ProxyService) ForwardEnvelope(ctx context.Context, ambient header.Headers, content string) (*http.Response, error) {
	pr, err := s.translator.FromJSON(ambient, content)
	if err != nil {
		return nil, s.rejected(SourceEnvelope, err)
	}
	return s.forward(ctx, pr)
}

// ForwardRequest dispatches an inbound request addressed to its final destination.
func (s *ProxyService) ForwardRequest(r *http.Request) (*http.Response, error) {
	pr, err := s.translator.FromRequest(r)
	if err != nil {
		return nil, s.rejected(SourceRequest, err)
	}
	return s.forward(r.Context(), pr)
}

// ForwardURL dispatches a GET for rawURL carrying the given headers.
func (s *ProxyService) ForwardURL(ctx context.Context, headers header.Headers, rawURL string) (*http.Response, error) {
	pr, err := s.translator.FromURL(headers, rawURL)
	if err != nil {
		return nil, s.rejected(SourceURL, err)
	}
	return s.forward(ctx, pr)
}

func (s *ProxyService) forward(ctx context.Context, pr *model.ProxyRequest) (*http.Response, error) {
	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"endpoint", pr.Endpoint,
	)

	resp, err := s.dispatcher.Dispatch(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("forward to %s: %w", pr.Endpoint, err)
	}
	return resp, nil
}

func (s *ProxyService) rejected(source string, err error) error {
	if s.metrics != nil {
		s.metrics.TranslationFailures.WithLabelValues(source, Reason(err)).Inc()
	}
	return fmt.Errorf("translate %s: %w", source, err)
}

// Reason classifies a translation error for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, translate.ErrValidation):
		return "validation"
	case errors.Is(err, translate.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, translate.ErrInvalidState):
		return "structure"
	case errors.Is(err, translate.ErrUnsupportedMethod):
		return "method"
	case errors.Is(err, translate.ErrEncoding):
		return "encoding"
	default:
		return "other"
	}
}
