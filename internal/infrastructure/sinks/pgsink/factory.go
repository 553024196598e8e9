package pgsink

import (
	"errors"

	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/repository"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

func init() {
	sinks.GlobalRegistry.Register(&Factory{})
}

// Factory creates postgres sinks. Registers as "postgres".
type Factory struct{}

func (f *Factory) Name() string {
	return "postgres"
}

func (f *Factory) ConfigSpec() sinks.SinkTypeInfo {
	return sinks.SinkTypeInfo{
		Type:        "postgres",
		Description: "Inserts each request record into the request_events table.",
		Fields: []sinks.ConfigField{
			{Name: "database.host", Type: "string", Required: true, Description: "Postgres host", Example: "localhost"},
			{Name: "database.name", Type: "string", Required: true, Description: "Database holding request_events", Example: "aleph"},
		},
	}
}

func (f *Factory) Create(deps sinks.Deps) (telemetry.Sink, error) {
	if deps.Pool == nil {
		return nil, errors.New("postgres sink requires a database pool")
	}
	return New(repository.NewEventRepository(deps.Pool)), nil
}
