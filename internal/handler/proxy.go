package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"

	"github.com/labstack/echo/v4"

	"drp-proxy-go/internal/config"
	"drp-proxy-go/internal/header"
	"drp-proxy-go/internal/service"
	"drp-proxy-go/internal/translate"
)

// MsgUnsupportedInbound is returned for inbound methods the local proxy does not accept.
var MsgUnsupportedInbound = fmt.Sprintf("HTTP Method is not supported. Supported HTTP Methods are: %s, %s",
	http.MethodPost, http.MethodOptions)

// userinfoPattern matches credentials embedded in endpoint URLs quoted by error messages.
var userinfoPattern = regexp.MustCompile(`(://)[^/@\s"]+@`)

// relayed response headers that are recomputed for the rewritten body.
var skipResponseHeaders = map[string]bool{
	echo.HeaderContentLength: true,
	"Transfer-Encoding":      true,
	"Connection":             true,
}

type errorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

// ProxyHandler accepts envelopes, forward-proxy requests and URL paths, and
// relays the endpoint's response.
type ProxyHandler struct {
	service *service.ProxyService
	mode    string
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler for the configured mode.
func NewProxyHandler(svc *service.ProxyService, cfg *config.Config, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		mode:    cfg.Server.Mode,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Local serves every path in local mode. Absolute-form request targets are
// forwarded as-is; POST bodies are envelopes.
func (h *ProxyHandler) Local(c echo.Context) error {
	req := c.Request()
	if req.URL.IsAbs() {
		resp, err := h.service.ForwardRequest(req)
		if err != nil {
			return h.mapError(c, err)
		}
		return h.relay(c, resp)
	}

	switch req.Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
		return h.Envelope(c)
	default:
		return c.JSON(http.StatusForbidden, errorResponse{Error: MsgUnsupportedInbound})
	}
}

// Envelope forwards the request described by the JSON body. Inbound headers
// are used unless the envelope carries its own.
func (h *ProxyHandler) Envelope(c echo.Context) error {
	req := c.Request()
	content, err := io.ReadAll(req.Body)
	if err != nil {
		// BodyLimit reports oversized envelopes as an *echo.HTTPError.
		return err
	}

	resp, err := h.service.ForwardEnvelope(req.Context(), header.FromHTTP(req.Header), string(content))
	if err != nil {
		return h.mapError(c, err)
	}
	return h.relay(c, resp)
}

// Get forwards a GET for the URL found in the path remainder after /get/.
func (h *ProxyHandler) Get(c echo.Context) error {
	req := c.Request()

	target, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		target = c.Param("*")
	}
	if target != "" && req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}

	resp, err := h.service.ForwardURL(req.Context(), header.FromHTTP(req.Header), target)
	if err != nil {
		return h.mapError(c, err)
	}
	return h.relay(c, resp)
}

// relay writes the endpoint's headers and textual body. Local mode keeps the
// endpoint's status; web mode always answers 200. A body in a non-UTF-8
// charset is re-encoded and its Content-Type updated to match.
func (h *ProxyHandler) relay(c echo.Context, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, _, err := translate.ResponseBody(resp)
	if err != nil {
		return h.mapError(c, err)
	}

	dst := c.Response().Header()
	for key, vals := range resp.Header {
		if skipResponseHeaders[key] {
			continue
		}
		dst[key] = append([]string(nil), vals...)
	}
	if ct := resp.Header.Get(echo.HeaderContentType); !translate.IsUTF8(ct) {
		dst.Set(echo.HeaderContentType, withUTF8(ct))
	}

	status := resp.StatusCode
	if h.mode == config.ModeWeb {
		status = http.StatusOK
	}
	c.Response().WriteHeader(status)
	if _, err := io.WriteString(c.Response(), body); err != nil {
		h.logger.Error("writing response body",
			"err", err,
			"path", c.Request().URL.Path,
		)
	}
	return nil
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	reject := http.StatusBadRequest
	if h.mode != config.ModeWeb {
		reject = http.StatusForbidden
	}

	var verr *translate.ValidationError
	if errors.As(err, &verr) {
		h.logger.Warn("request rejected", "reason", "validation", "err", verr.Error())
		return c.JSON(reject, errorResponse{Error: verr.Error(), Messages: verr.Messages()})
	}

	for _, sentinel := range []error{translate.ErrMalformedInput, translate.ErrInvalidState, translate.ErrUnsupportedMethod} {
		if errors.Is(err, sentinel) {
			h.logger.Warn("request rejected", "reason", service.Reason(err), "err", err)
			return c.JSON(reject, errorResponse{Error: sentinel.Error()})
		}
	}

	h.logger.Error("proxy error",
		"err", sanitizeError(err),
		"path", c.Request().URL.Path,
	)

	if errors.Is(err, translate.ErrEncoding) {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "unsupported character encoding"})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "upstream request timed out"})
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "upstream request timed out"})
	}

	if errors.Is(err, context.Canceled) {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "client disconnected"})
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "upstream host unreachable"})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "upstream request failed"})
}

// withUTF8 replaces the charset parameter of a Content-Type with utf-8.
func withUTF8(contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	params["charset"] = "utf-8"
	return mime.FormatMediaType(mediaType, params)
}

// sanitizeError redacts URL credentials from error messages that quote endpoints.
func sanitizeError(err error) string {
	return userinfoPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]@")
}
