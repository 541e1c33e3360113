package translate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"drp-proxy-go/internal/model"
	"drp-proxy-go/internal/validation"
)

// RequestBody returns the text of the request entity decoded with its declared
// charset. It reports false when there is no entity or the text has no content.
func RequestBody(req *model.ProxyRequest) (string, bool, error) {
	if req == nil || !req.EnclosesEntity() || req.Body == nil {
		return "", false, nil
	}
	return textOf(req.Body.Content, req.Body.ContentType)
}

// ResponseBody reads and decodes the response body using the charset declared
// by its Content-Type. resp.Body is replaced so it can be read again.
func ResponseBody(resp *http.Response) (string, bool, error) {
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		return "", false, nil
	}

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return "", false, fmt.Errorf("read response body: %w", err)
	}

	return textOf(data, resp.Header.Get("Content-Type"))
}

func textOf(data []byte, contentType string) (string, bool, error) {
	text, err := decodeText(data, contentType)
	if err != nil {
		return "", false, err
	}
	if validation.IsEmpty(text) {
		return "", false, nil
	}
	return text, true, nil
}

