package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelic runs each request inside a New Relic web transaction named
// "METHOD /route". The transaction is stored in the request context so
// database segments attach to it. Handler errors are noticed on the
// transaction and written through c.Error before it ends, so the recorded
// status is final. A nil app disables the middleware.
func NewRelic(app *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if app == nil {
			return next
		}
		return func(c echo.Context) error {
			req := c.Request()
			name := c.Path()
			if name == "" {
				name = "NotFound"
			}
			txn := app.StartTransaction(req.Method + " " + name)
			defer txn.End()

			txn.SetWebRequestHTTP(req)
			c.Response().Writer = txn.SetWebResponse(c.Response().Writer)
			c.SetRequest(req.WithContext(newrelic.NewContext(req.Context(), txn)))

			if err := next(c); err != nil {
				txn.NoticeError(err)
				c.Error(err)
			}
			return nil
		}
	}
}
