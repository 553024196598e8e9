package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akave-ai/alephweb/internal/apperr"
	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	"github.com/akave-ai/alephweb/internal/requestctx"
	"github.com/akave-ai/alephweb/internal/response"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

// ReporterStatus is the part of telemetry.Reporter the status view reads.
type ReporterStatus interface {
	Stats() telemetry.Stats
	Sink() telemetry.Sink
}

// TelemetryHandler exposes the telemetry pipeline's configuration and counters.
type TelemetryHandler struct {
	Registry *sinks.Registry
	Reporter ReporterStatus
}

// Status returns the active sinks and reporter counters (GET /api/1/telemetry/status).
// Administrators only.
func (h *TelemetryHandler) Status(c echo.Context) error {
	if !requestctx.AuthFrom(c.Request().Context()).IsAdmin() {
		return apperr.Forbidden("")
	}
	active := []string{}
	if h.Reporter == nil {
		return response.OK(c, map[string]any{"sinks": active, "stats": telemetry.Stats{}})
	}
	switch s := h.Reporter.Sink().(type) {
	case telemetry.MultiSink:
		active = s.Names()
	case nil:
	default:
		active = append(active, s.Name())
	}
	return response.OK(c, map[string]any{
		"sinks": active,
		"stats": h.Reporter.Stats(),
	})
}

// SinkTypes lists every registered sink type and its settings (GET /api/1/telemetry/sinks).
func (h *TelemetryHandler) SinkTypes(c echo.Context) error {
	return response.OK(c, map[string]any{"types": h.Registry.AllTypesInfo()})
}

// SinkType describes one sink type (GET /api/1/telemetry/sinks/:type).
func (h *TelemetryHandler) SinkType(c echo.Context) error {
	info, ok := h.Registry.GetTypeInfo(c.Param("type"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown sink type: "+c.Param("type"))
	}
	return response.OK(c, map[string]any{"type": info})
}
