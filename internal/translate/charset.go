package translate

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// formReplacer adjusts url.QueryEscape output to the classic
// application/x-www-form-urlencoded alphabet, which keeps '*' and escapes '~'.
var formReplacer = strings.NewReplacer("%2A", "*", "~", "%7E")

func formEscape(s string) string {
	return formReplacer.Replace(url.QueryEscape(s))
}

// declaredCharset returns the charset parameter of a Content-Type value,
// or "" when none is declared or the value cannot be parsed.
func declaredCharset(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}

// IsUTF8 reports whether text with this content type is already UTF-8.
// An undeclared charset counts as UTF-8.
func IsUTF8(contentType string) bool {
	label := declaredCharset(contentType)
	if label == "" {
		return true
	}
	_, name := charset.Lookup(label)
	return name == "utf-8"
}

// encodingFor resolves the charset declared by contentType.
// A nil encoding means the bytes are UTF-8 and need no transformation.
func encodingFor(contentType string) (encoding.Encoding, error) {
	label := declaredCharset(contentType)
	if label == "" {
		return nil, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrEncoding, label)
	}
	if name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

func encodeText(s, contentType string) ([]byte, error) {
	enc, err := encodingFor(contentType)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(s), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return out, nil
}

func decodeText(data []byte, contentType string) (string, error) {
	enc, err := encodingFor(contentType)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return string(out), nil
}
