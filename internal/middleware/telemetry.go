package middleware

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/alephweb/internal/model"
	"github.com/akave-ai/alephweb/internal/requestctx"
)

// OriginPrefix is prepended to the endpoint name to form the report origin.
const OriginPrefix = "alephweb.views."

// Reporter accepts telemetry records without blocking.
type Reporter interface {
	Report(origin string, rec model.TelemetryRecord) bool
}

type TelemetryConfig struct {
	Reporter Reporter
	Logger   zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Telemetry reports one record per request once the response is final.
// Static asset requests are skipped. Reporting never changes the response.
func Telemetry(reporter Reporter, log zerolog.Logger) echo.MiddlewareFunc {
	return TelemetryWithConfig(TelemetryConfig{Reporter: reporter, Logger: log})
}

func TelemetryWithConfig(cfg TelemetryConfig) echo.MiddlewareFunc {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger.With().Str("component", "telemetry").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}

			endpoint := EndpointName(c)
			if endpoint == StaticEndpoint {
				return nil
			}
			elapsed, err := requestctx.Elapsed(c.Request().Context(), cfg.Now())
			if err != nil {
				log.Error().Err(err).Str("endpoint", endpoint).Msg("request was not timed, skipping telemetry")
				return nil
			}

			rec := BuildRecord(c, endpoint, elapsed)
			log.Debug().Msgf("Request %s (%d): %dms", endpoint, rec.StatusCode, elapsed.Milliseconds())
			if cfg.Reporter != nil {
				cfg.Reporter.Report(OriginPrefix+endpoint, rec)
			}
			return nil
		}
	}
}

// BuildRecord assembles the telemetry record of a finished request.
func BuildRecord(c echo.Context, endpoint string, elapsed time.Duration) model.TelemetryRecord {
	req := c.Request()
	res := c.Response()
	return model.TelemetryRecord{
		Endpoint:       endpoint,
		Duration:       elapsed.Seconds(),
		URL:            fullURL(c),
		QueryString:    req.URL.RawQuery,
		Headers:        orderedHeaders(req),
		Role:           requestctx.AuthFrom(req.Context()).RoleID(),
		RemoteAddr:     c.RealIP(),
		Method:         req.Method,
		StatusCode:     res.Status,
		ResponseLength: responseLength(res),
	}
}

func fullURL(c echo.Context) string {
	req := c.Request()
	u := url.URL{
		Scheme:   c.Scheme(),
		Host:     req.Host,
		Path:     req.URL.Path,
		RawPath:  req.URL.RawPath,
		RawQuery: req.URL.RawQuery,
	}
	return u.String()
}

// orderedHeaders lists every header value as its own pair, Host included.
// net/http does not keep wire order, so pairs are sorted by name.
func orderedHeaders(req *http.Request) []model.Header {
	names := make([]string, 0, len(req.Header)+1)
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.Header, 0, len(names)+1)
	if req.Host != "" && req.Header.Get("Host") == "" {
		out = append(out, model.Header{Name: "Host", Value: req.Host})
	}
	for _, name := range names {
		for _, v := range req.Header[name] {
			out = append(out, model.Header{Name: name, Value: v})
		}
	}
	return out
}

// responseLength is the declared Content-Length, else the bytes written by a
// committed response, else nil.
func responseLength(res *echo.Response) *int64 {
	if cl := res.Header().Get(echo.HeaderContentLength); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
			return &n
		}
	}
	if !res.Committed {
		return nil
	}
	n := res.Size
	return &n
}
