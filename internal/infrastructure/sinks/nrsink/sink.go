// Package nrsink reports request records to New Relic as custom events.
package nrsink

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/model"
)

// EventType is the New Relic custom event type of request records.
const EventType = "AlephRequest"

// New Relic truncates string attributes above this size.
const maxAttributeLen = 4095

// Recorder is the part of *newrelic.Application the sink uses.
type Recorder interface {
	RecordCustomEvent(eventType string, params map[string]any)
}

// Sink records custom events.
type Sink struct {
	app Recorder
}

// New returns a Sink recording to app.
func New(app Recorder) *Sink {
	return &Sink{app: app}
}

func (s *Sink) Name() string { return "newrelic" }

func (s *Sink) Report(_ context.Context, origin string, rec model.TelemetryRecord) error {
	attrs, err := Attributes(origin, rec)
	if err != nil {
		return err
	}
	s.app.RecordCustomEvent(EventType, attrs)
	return nil
}

func (s *Sink) Close(context.Context) error { return nil }

// Attributes flattens rec into New Relic attribute values with credentials
// masked. Headers are
// encoded as one JSON string attribute; absent role and length are omitted.
func Attributes(origin string, rec model.TelemetryRecord) (map[string]any, error) {
	rec = sinks.Redact(rec)
	headers, err := json.Marshal(rec.Headers)
	if err != nil {
		return nil, err
	}
	h := string(headers)
	if len(h) > maxAttributeLen {
		h = h[:maxAttributeLen]
	}
	attrs := map[string]any{
		"origin":       origin,
		"endpoint":     rec.Endpoint,
		"duration":     rec.Duration,
		"url":          rec.URL,
		"query_string": rec.QueryString,
		"headers":      h,
		"remote_addr":  rec.RemoteAddr,
		"method":       rec.Method,
		"status_code":  rec.StatusCode,
	}
	if rec.Role != nil {
		attrs["role"] = *rec.Role
	}
	if rec.ResponseLength != nil {
		attrs["response_length"] = *rec.ResponseLength
	}
	return attrs, nil
}

var errNoApplication = errors.New("new relic application not configured")
