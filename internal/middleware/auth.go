package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/auth"
	"github.com/akave-ai/alephweb/internal/requestctx"
)

// Auth resolves the caller and stores the result in the request context.
// Callers that fail authentication continue as guests.
func Auth(authenticator auth.Authenticator, log zerolog.Logger) echo.MiddlewareFunc {
	log = log.With().Str("component", "auth").Logger()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			state := requestctx.Anonymous()
			role, err := authenticator.Authenticate(req)
			switch {
			case err == nil:
				state = requestctx.Authenticated(role)
			case errors.Is(err, auth.ErrNoCredentials):
			default:
				log.Debug().Err(err).Str("remote_addr", c.RealIP()).Msg("authentication failed, continuing as guest")
			}
			c.SetRequest(req.WithContext(requestctx.WithAuth(req.Context(), state)))
			return next(c)
		}
	}
}
