package nrsink

import (
	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

func init() {
	sinks.GlobalRegistry.Register(&Factory{})
}

// Factory creates New Relic sinks. Registers as "newrelic".
type Factory struct{}

func (f *Factory) Name() string {
	return "newrelic"
}

func (f *Factory) ConfigSpec() sinks.SinkTypeInfo {
	return sinks.SinkTypeInfo{
		Type:        "newrelic",
		Description: "Records each request as an " + EventType + " custom event in New Relic.",
		Fields: []sinks.ConfigField{
			{Name: "observability.new_relic.license_key", Type: "string", Required: true, Description: "New Relic ingest license key"},
		},
	}
}

func (f *Factory) Create(deps sinks.Deps) (telemetry.Sink, error) {
	if deps.NewRelic == nil {
		return nil, errNoApplication
	}
	return New(deps.NewRelic), nil
}
