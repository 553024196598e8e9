package sinks

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/akave-ai/alephweb/internal/model"
)

const redacted = "[redacted]"

var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"X-Api-Key":           true,
}

// sensitiveParams are query parameters that carry credentials (lowercase).
var sensitiveParams = map[string]bool{
	"api_key":      true,
	"apikey":       true,
	"access_token": true,
	"token":        true,
}

// RedactHeaders returns a copy of headers with credential-bearing values
// replaced. Sinks that leave the service boundary use it.
func RedactHeaders(headers []model.Header) []model.Header {
	out := make([]model.Header, len(headers))
	for i, h := range headers {
		out[i] = h
		if sensitiveHeaders[http.CanonicalHeaderKey(h.Name)] {
			out[i].Value = redacted
		}
	}
	return out
}

// RedactQuery masks the values of credential parameters in a raw query
// string. Parameter order and every other byte are kept.
func RedactQuery(raw string) string {
	if raw == "" {
		return raw
	}
	parts := strings.Split(raw, "&")
	for i, p := range parts {
		name, _, _ := strings.Cut(p, "=")
		key, err := url.QueryUnescape(name)
		if err != nil {
			key = name
		}
		if sensitiveParams[strings.ToLower(key)] {
			parts[i] = name + "=" + redacted
		}
	}
	return strings.Join(parts, "&")
}

// RedactURL applies RedactQuery to the query part of rawURL.
func RedactURL(rawURL string) string {
	base, query, ok := strings.Cut(rawURL, "?")
	if !ok {
		return rawURL
	}
	query, fragment, hasFragment := strings.Cut(query, "#")
	out := base + "?" + RedactQuery(query)
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

// Redact returns a copy of rec with credentials masked in its URL, query
// string and headers.
func Redact(rec model.TelemetryRecord) model.TelemetryRecord {
	rec.URL = RedactURL(rec.URL)
	rec.QueryString = RedactQuery(rec.QueryString)
	rec.Headers = RedactHeaders(rec.Headers)
	return rec
}
