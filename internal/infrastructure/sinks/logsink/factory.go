package logsink

import (
	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

func init() {
	sinks.GlobalRegistry.Register(&Factory{})
}

// Factory creates log sinks. Registers as "log".
type Factory struct{}

func (f *Factory) Name() string {
	return "log"
}

func (f *Factory) ConfigSpec() sinks.SinkTypeInfo {
	return sinks.SinkTypeInfo{
		Type:        "log",
		Description: "Writes each request record as a structured log line. Credential headers are redacted.",
		Fields: []sinks.ConfigField{
			{Name: "observability.logging.level", Type: "string", Required: false, Description: "Records are written at info level", Example: "info"},
		},
	}
}

func (f *Factory) Create(deps sinks.Deps) (telemetry.Sink, error) {
	return New(deps.Logger), nil
}
