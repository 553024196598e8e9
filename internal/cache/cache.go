// Package cache sets the Cache-Control policy of responses.
package cache

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	maxAgeKey = "cache.max_age"

	// HeaderCacheControl is the response header Enable and Middleware set.
	HeaderCacheControl = "Cache-Control"

	// NoStore is applied to /api responses that never call Enable.
	NoStore = "no-store"
	// ClientSide lets browsers keep a copy they must revalidate; shared caches must not store it.
	ClientSide = "private, no-cache"
)

// Middleware makes maxAge (seconds) available to Enable and marks API
// responses uncacheable unless the handler opts in.
func Middleware(maxAge int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(maxAgeKey, maxAge)
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				c.Response().Header().Set(HeaderCacheControl, NoStore)
			}
			return next(c)
		}
	}
}

// Enable marks the response cacheable. With serverSide the response may be
// stored by shared caches for the configured max age; otherwise only the
// client keeps it. Must be called before the body is written.
func Enable(c echo.Context, serverSide bool) {
	h := c.Response().Header()
	if !serverSide {
		h.Set(HeaderCacheControl, ClientSide)
		return
	}
	maxAge, _ := c.Get(maxAgeKey).(int)
	h.Set(HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
	h.Add(echo.HeaderVary, echo.HeaderAuthorization)
}
