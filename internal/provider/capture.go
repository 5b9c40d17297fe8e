package provider

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CapturedPayload is the redacted record of one provider exchange, handed
// to the Capture hook for raw storage.
type CapturedPayload struct {
	Provider        string
	Endpoint        string
	RunAt           time.Time
	RequestURL      string
	RequestParams   map[string]string
	RequestHeaders  map[string]string
	ResponseStatus  int
	ResponseHeaders map[string]string
	PayloadText     string
}

// Capture receives every successful exchange. A nil Capture skips raw
// storage.
type Capture func(CapturedPayload)

const redacted = "REDACTED"

var sensitiveQueryKeys = map[string]struct{}{
	"appid":          {},
	"apikey":         {},
	"apiKey":         {},
	"applicationKey": {},
	"key":            {},
	"token":          {},
}

var sensitiveHeaderKeys = map[string]struct{}{
	"authorization": {},
	"x-api-key":     {},
}

func capturePayload(provider, endpoint string, runAt time.Time, req *http.Request, status int, responseHeaders http.Header, payloadText string) CapturedPayload {
	bare := *req.URL
	bare.RawQuery = ""

	return CapturedPayload{
		Provider:        provider,
		Endpoint:        endpoint,
		RunAt:           runAt,
		RequestURL:      bare.String(),
		RequestParams:   sanitizeParams(req.URL.Query()),
		RequestHeaders:  sanitizeHeaders(req.Header),
		ResponseStatus:  status,
		ResponseHeaders: sanitizeHeaders(responseHeaders),
		PayloadText:     payloadText,
	}
}

func sanitizeParams(params url.Values) map[string]string {
	cleaned := make(map[string]string, len(params))
	for key, values := range params {
		if _, sensitive := sensitiveQueryKeys[key]; sensitive {
			cleaned[key] = redacted
			continue
		}
		if len(values) > 0 {
			cleaned[key] = values[0]
		}
	}
	return cleaned
}

func sanitizeHeaders(headers http.Header) map[string]string {
	cleaned := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if _, sensitive := sensitiveHeaderKeys[strings.ToLower(key)]; sensitive {
			cleaned[key] = redacted
			continue
		}
		cleaned[key] = values[0]
	}
	return cleaned
}
