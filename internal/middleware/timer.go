// Package middleware holds the request lifecycle hooks of the web service:
// timing, authentication, telemetry and error translation.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akave-ai/alephweb/internal/requestctx"
)

const endpointKey = "endpoint"

// StaticEndpoint names the static asset route. Requests to it are never reported.
const StaticEndpoint = "static"

// Timer records the request start time in the request context.
func Timer() echo.MiddlewareFunc {
	return TimerWithClock(time.Now)
}

// TimerWithClock is Timer reading the time from now.
func TimerWithClock(now func() time.Time) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(requestctx.WithStart(req.Context(), now())))
			return next(c)
		}
	}
}

// Endpoint names the route it is attached to. The name shows up in telemetry.
func Endpoint(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(endpointKey, name)
			return next(c)
		}
	}
}

// EndpointName returns the name set by Endpoint, falling back to the route
// pattern and then to "unknown".
func EndpointName(c echo.Context) string {
	if name, ok := c.Get(endpointKey).(string); ok && name != "" {
		return name
	}
	if p := c.Path(); p != "" {
		return p
	}
	return "unknown"
}
