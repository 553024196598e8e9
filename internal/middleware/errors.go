package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/apperr"
	"github.com/akave-ai/alephweb/internal/requestctx"
	"github.com/akave-ai/alephweb/internal/response"
)

// ErrorHandler translates the recognised error categories into JSON error
// envelopes. Every other error goes to fallback, usually
// (*echo.Echo).DefaultHTTPErrorHandler.
func ErrorHandler(fallback echo.HTTPErrorHandler, log zerolog.Logger) echo.HTTPErrorHandler {
	log = log.With().Str("component", "errors").Logger()
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr, ok := Classify(err)
		if !ok {
			if e, isApp := apperr.As(err); isApp && e.Category == apperr.MissingContext {
				log.Error().Err(err).Str("path", c.Path()).Msg("request context wiring defect")
			}
			fallback(err, c)
			return
		}

		status, body := Envelope(appErr, requestctx.AuthFrom(c.Request().Context()))
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

// Classify maps err onto one of the user-facing categories. ok is false for
// errors this layer does not translate, MissingContext included.
func Classify(err error) (*apperr.Error, bool) {
	if e, ok := apperr.As(err); ok {
		switch e.Category {
		case apperr.AuthorizationDenied, apperr.SchemaValidationFailed, apperr.SearchBackendError:
			return e, true
		default:
			return nil, false
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.FromValidator(verrs), true
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusForbidden {
		return apperr.Forbidden(""), true
	}
	return nil, false
}

// Envelope returns the status code and body for a user-facing error.
func Envelope(e *apperr.Error, auth requestctx.Auth) (int, map[string]any) {
	switch e.Category {
	case apperr.AuthorizationDenied:
		roles := auth.Roles
		if roles == nil {
			roles = []string{}
		}
		var user any
		if auth.LoggedIn && auth.Role != nil {
			user = auth.Role
		}
		return http.StatusForbidden, response.ErrorBody(apperr.ForbiddenMessage, map[string]any{
			"roles": roles,
			"user":  user,
		})
	case apperr.SearchBackendError:
		var info any
		if cause := e.LastRootCause(); cause != nil {
			info = cause
		}
		return http.StatusBadRequest, response.ErrorBody(e.Message, map[string]any{"info": info})
	default:
		return http.StatusBadRequest, response.ErrorBody(e.Message, nil)
	}
}
