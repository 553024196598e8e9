package logsink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/model"
)

// Sink logs telemetry records.
type Sink struct {
	log zerolog.Logger
}

// New returns a Sink writing to log.
func New(log zerolog.Logger) *Sink {
	return &Sink{log: log.With().Str("component", "telemetry.log").Logger()}
}

func (s *Sink) Name() string { return "log" }

func (s *Sink) Report(_ context.Context, origin string, rec model.TelemetryRecord) error {
	rec = sinks.Redact(rec)
	headers := zerolog.Dict()
	for _, h := range rec.Headers {
		headers.Str(h.Name, h.Value)
	}
	ev := s.log.Info().
		Str("origin", origin).
		Str("endpoint", rec.Endpoint).
		Float64("duration", rec.Duration).
		Str("url", rec.URL).
		Str("query_string", rec.QueryString).
		Dict("headers", headers).
		Str("remote_addr", rec.RemoteAddr).
		Str("method", rec.Method).
		Int("status_code", rec.StatusCode)
	if rec.Role != nil {
		ev = ev.Str("role", *rec.Role)
	}
	if rec.ResponseLength != nil {
		ev = ev.Int64("response_length", *rec.ResponseLength)
	}
	ev.Msg("request event")
	return nil
}

func (s *Sink) Close(context.Context) error { return nil }
