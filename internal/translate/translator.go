// Package translate turns JSON envelopes, inbound requests and bare URLs into
// validated outbound request descriptions, and extracts textual bodies from
// requests and responses.
package translate

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	validate "github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"drp-proxy-go/internal/header"
	"drp-proxy-go/internal/model"
	"drp-proxy-go/internal/validation"
)

// Envelope field names, compared after lower-casing and trimming.
const (
	fieldEndpoint = "endpoint"
	fieldMethod   = "method"
	fieldHeaders  = "headers"
	fieldRequest  = "request"
)

const defaultEntityType = "text/plain; charset=UTF-8"

// knownMethods is the set accepted during envelope validation. Only GET and
// POST can actually be built; the rest fail later with ErrUnsupportedMethod.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// Translator builds model.ProxyRequest values. It holds no per-call state and
// is safe for concurrent use.
type Translator struct {
	validate *validate.Validate
	logger   *slog.Logger
}

// New creates a Translator.
func New(logger *slog.Logger) *Translator {
	return &Translator{
		validate: validate.New(),
		logger:   logger.With("component", "translator"),
	}
}

// FromJSON builds a request from a JSON envelope. ambient supplies the headers
// used when the envelope has no headers field of its own.
func (t *Translator) FromJSON(ambient header.Headers, content string) (*model.ProxyRequest, error) {
	log := validation.New()

	if validation.IsEmpty(content) {
		log.Add(MsgEnvelopeMissing)
		return nil, newValidationError(log)
	}
	if !gjson.Valid(content) {
		return nil, ErrMalformedInput
	}
	root := gjson.Parse(content)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: envelope must be a JSON object", ErrInvalidState)
	}

	fields := normalizeKeys(root)
	if !t.validateEnvelope(fields, log) {
		return nil, newValidationError(log)
	}

	endpoint := strings.TrimSpace(fields[fieldEndpoint].String())
	method := normalizeMethod(fields[fieldMethod].String())

	headers := ambient
	if raw, ok := fields[fieldHeaders]; ok {
		parsed, err := parseHeaders(raw)
		if err != nil {
			return nil, err
		}
		headers = parsed
	}

	req, err := newRequest(method, endpoint)
	if err != nil {
		return nil, err
	}
	copyHeaders(req, headers, false)

	if body, ok := fields[fieldRequest]; ok && req.EnclosesEntity() {
		contentType, _ := req.Header.Value("Content-Type")
		req.Body = encodeBody(body, contentType)
	}

	t.logger.Debug("translated envelope",
		"method", req.Method,
		"endpoint", req.Endpoint,
		"headers", req.Header.Len(),
	)
	return req, nil
}

// validateEnvelope records every failed check in log and reports whether
// none failed.
func (t *Translator) validateEnvelope(fields map[string]gjson.Result, log *validation.Log) bool {
	endpoint, ok := fields[fieldEndpoint]
	switch {
	case !ok || isBlankScalar(endpoint):
		log.Add(MsgEndpointRequired)
	case !t.validURL(strings.TrimSpace(endpoint.String())):
		log.Add(MsgEndpointInvalid)
	}

	method, ok := fields[fieldMethod]
	switch {
	case !ok || isBlankScalar(method):
		log.Add(MsgMethodRequired)
	case !knownMethods[normalizeMethod(method.String())]:
		log.Add(MsgMethodInvalid)
	}

	if request, ok := fields[fieldRequest]; ok {
		switch {
		case isBlank(request):
			log.Add(MsgRequestRequired)
		case request.IsArray():
			log.Add(MsgRequestShape)
		}
	}

	return log.Len() == 0
}

// validURL accepts absolute URLs of any scheme with a host, including
// single-label local hosts such as localhost.
func (t *Translator) validURL(raw string) bool {
	if err := t.validate.Var(raw, "required,url"); err != nil {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "file" {
		return true
	}
	return t.validate.Var(u.Hostname(), "required,hostname_rfc1123|ip") == nil
}

func normalizeKeys(obj gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		fields[strings.ToLower(strings.TrimSpace(key.String()))] = value
		return true
	})
	return fields
}

func normalizeMethod(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// isBlank reports whether a JSON value is null or its text has no content.
func isBlank(v gjson.Result) bool {
	return v.Type == gjson.Null || validation.IsEmpty(v.Raw)
}

// isBlankScalar also treats a string whose decoded text has no content as blank.
func isBlankScalar(v gjson.Result) bool {
	return isBlank(v) || validation.IsEmpty(v.String())
}

// literal returns the text of a JSON value, keeping numbers exactly as written.
func literal(v gjson.Result) string {
	if v.Type == gjson.Number {
		return v.Raw
	}
	return v.String()
}

// usable reports whether a JSON value may appear as a header value or body
// field: primitives and objects, never arrays or null.
func usable(v gjson.Result) bool {
	return v.Type != gjson.Null && !v.IsArray()
}

func parseHeaders(raw gjson.Result) (header.Headers, error) {
	if !raw.IsObject() {
		return nil, fmt.Errorf("%w: headers must be a JSON object", ErrInvalidState)
	}
	headers := header.Headers{}
	raw.ForEach(func(key, value gjson.Result) bool {
		if usable(value) {
			headers.Set(key.String(), literal(value))
		}
		return true
	})
	return headers, nil
}

func newRequest(method, endpoint string) (*model.ProxyRequest, error) {
	switch method {
	case http.MethodGet, http.MethodPost:
		return &model.ProxyRequest{Endpoint: endpoint, Method: method}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}

// copyHeaders adds headers to req, never copying Content-Length. With
// skipBlankNames, entries whose name has no content are dropped too.
func copyHeaders(req *model.ProxyRequest, headers header.Headers, skipBlankNames bool) {
	for _, e := range headers {
		if header.IsContentLength(e.Name) {
			continue
		}
		if skipBlankNames && validation.IsEmpty(e.Name) {
			continue
		}
		req.Header.Add(e.Name, e.Value)
	}
}

// encodeBody form-encodes a primitive, or concatenates key=value pairs of an
// object without any separator between pairs. A repeated key keeps its first
// position and its last value.
func encodeBody(body gjson.Result, contentType string) *model.Entity {
	var b strings.Builder
	switch {
	case body.IsObject():
		var keys []string
		values := map[string]gjson.Result{}
		body.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, seen := values[k]; !seen {
				keys = append(keys, k)
			}
			values[k] = value
			return true
		})
		for _, k := range keys {
			if v := values[k]; usable(v) {
				b.WriteString(formEscape(k))
				b.WriteByte('=')
				b.WriteString(formEscape(literal(v)))
			}
		}
	case usable(body):
		b.WriteString(formEscape(literal(body)))
	}

	// Form-encoded text is ASCII, so an unresolvable charset falls back to
	// the raw bytes.
	content, err := encodeText(b.String(), contentType)
	if err != nil {
		content = []byte(b.String())
	}
	if contentType == "" {
		contentType = defaultEntityType
	}
	return &model.Entity{Content: content, ContentType: contentType}
}
