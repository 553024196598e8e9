// Package search adapts failures reported by the search backend into
// application errors.
package search

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/akave-ai/alephweb/internal/apperr"
)

type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Status int             `json:"status"`
}

type errorDetail struct {
	Type      string           `json:"type"`
	Reason    string           `json:"reason"`
	RootCause []map[string]any `json:"root_cause"`
}

// ParseTransportError turns an error response of the search backend into a
// SearchBackendError. It understands {"error": {"type", "reason",
// "root_cause": [...]}} and {"error": "text"}; anything else becomes the
// message verbatim with no root causes.
func ParseTransportError(status int, body []byte) *apperr.Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Error) == 0 {
		return apperr.SearchBackend(fallbackMessage(status, body), nil)
	}

	var text string
	if err := json.Unmarshal(eb.Error, &text); err == nil {
		return apperr.SearchBackend(text, nil)
	}

	var detail errorDetail
	if err := json.Unmarshal(eb.Error, &detail); err != nil {
		return apperr.SearchBackend(fallbackMessage(status, body), nil)
	}
	msg := detail.Type
	if detail.Reason != "" {
		if msg != "" {
			msg += ": "
		}
		msg += detail.Reason
	}
	if msg == "" {
		msg = fallbackMessage(status, nil)
	}
	return apperr.SearchBackend(msg, detail.RootCause)
}

// CheckResponse returns nil for 2xx responses and a SearchBackendError
// built from the body otherwise.
func CheckResponse(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return ParseTransportError(status, body)
}

func fallbackMessage(status int, body []byte) string {
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("search backend returned %d %s", status, http.StatusText(status))
}
