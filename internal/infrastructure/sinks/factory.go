package sinks

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/config"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

// Deps are the shared resources a sink may need. Fields are nil when the
// corresponding subsystem is not configured.
type Deps struct {
	Logger   zerolog.Logger
	Pool     *pgxpool.Pool
	NewRelic *newrelic.Application
	Archive  *config.ArchiveConfig
}

// Factory creates a telemetry.Sink. Each sink type implements and registers a Factory.
// ConfigSpec declares which settings the sink type needs.
type Factory interface {
	Name() string
	ConfigSpec() SinkTypeInfo
	Create(deps Deps) (telemetry.Sink, error)
}
