package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/akave-ai/alephweb/internal/auth"
	"github.com/akave-ai/alephweb/internal/cache"
	"github.com/akave-ai/alephweb/internal/config"
	"github.com/akave-ai/alephweb/internal/handler"
	"github.com/akave-ai/alephweb/internal/infrastructure/sinks"
	_ "github.com/akave-ai/alephweb/internal/infrastructure/sinks/logsink"
	_ "github.com/akave-ai/alephweb/internal/infrastructure/sinks/nrsink"
	_ "github.com/akave-ai/alephweb/internal/infrastructure/sinks/pgsink"
	_ "github.com/akave-ai/alephweb/internal/infrastructure/sinks/s3sink"
	"github.com/akave-ai/alephweb/internal/middleware"
	"github.com/akave-ai/alephweb/internal/repository"
	"github.com/akave-ai/alephweb/internal/schema"
	"github.com/akave-ai/alephweb/internal/telemetry"
)

// ShellRoutes render the application shell; the client router takes over from there.
var ShellRoutes = []string{
	"/",
	"/search",
	"/help",
	"/help/*",
	"/entities",
	"/entities/*",
	"/tabular/*",
	"/text/*",
}

// Deps are the optional shared resources the server is built with.
type Deps struct {
	Logger   zerolog.Logger
	Pool     *pgxpool.Pool
	NewRelic *newrelic.Application
	// Schemata overrides the configured schema store.
	Schemata schema.Store
	// Authenticator overrides the configured api key authenticator.
	Authenticator auth.Authenticator
}

// Server holds the Echo app and the telemetry reporter.
type Server struct {
	Echo     *echo.Echo
	Config   *config.Config
	Reporter *telemetry.Reporter
	log      zerolog.Logger
}

// New builds the Echo server, its collaborators and routes.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*Server, error) {
	log := deps.Logger

	store := deps.Schemata
	if store == nil {
		var err error
		store, err = schemaStore(cfg, deps.Pool, log)
		if err != nil {
			return nil, err
		}
	}

	authenticator := deps.Authenticator
	if authenticator == nil {
		roles, err := roleStore(cfg, deps.Pool)
		if err != nil {
			return nil, err
		}
		authenticator = auth.NewAPIKeyAuthenticator(roles)
	}

	sink, err := sinks.GlobalRegistry.Build(ctx, cfg.Telemetry.Sinks, sinks.Deps{
		Logger:   log,
		Pool:     deps.Pool,
		NewRelic: deps.NewRelic,
		Archive:  cfg.Archive,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry sinks: %w", err)
	}
	reporter := telemetry.NewReporter(sink, cfg.Telemetry.QueueSize, cfg.Telemetry.EmitTimeout, log)
	log.Info().Strs("sinks", sink.Names()).Msg("telemetry reporter started")

	renderer, err := handler.NewRenderer()
	if err != nil {
		_ = reporter.Close(ctx)
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = middleware.ErrorHandler(e.DefaultHTTPErrorHandler, log)
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(
		middleware.Timer(),
		middleware.Telemetry(reporter, log),
		middleware.NewRelic(deps.NewRelic),
		echomw.Recover(),
	)
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.Server.CORSAllowedOrigins}))
	}
	e.Use(
		cache.Middleware(cfg.Cache.MaxAge),
		middleware.Auth(authenticator, log),
	)

	ui := &handler.UIHandler{StaticDir: cfg.UI.StaticDir, Title: cfg.UI.Title}
	for _, p := range ShellRoutes {
		e.GET(p, ui.Shell, middleware.Endpoint("ui"))
	}
	e.GET("/static/*", ui.Static, middleware.Endpoint(middleware.StaticEndpoint))

	metadata := &handler.MetadataHandler{Schemata: store}
	telemetryHandler := &handler.TelemetryHandler{Registry: sinks.GlobalRegistry, Reporter: reporter}

	api := e.Group("/api/1")
	api.GET("/metadata", metadata.Metadata, middleware.Endpoint("metadata"))
	api.GET("/telemetry/status", telemetryHandler.Status, middleware.Endpoint("telemetry_status"))
	api.GET("/telemetry/sinks", telemetryHandler.SinkTypes, middleware.Endpoint("telemetry_sinks"))
	api.GET("/telemetry/sinks/:type", telemetryHandler.SinkType, middleware.Endpoint("telemetry_sink"))

	log.Info().Strs("sink_types", sinks.GlobalRegistry.ListRegistered()).Msg("registered telemetry sink types")

	return &Server{Echo: e, Config: cfg, Reporter: reporter, log: log}, nil
}

func schemaStore(cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger) (schema.Store, error) {
	if cfg.Schema.Source == "postgres" {
		if pool == nil {
			return nil, errors.New("schema source postgres requires a database pool")
		}
		return repository.NewSchemaRepository(pool), nil
	}
	if _, err := os.Stat(cfg.Schema.Dir); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("dir", cfg.Schema.Dir).Msg("schema directory missing, serving no schemata")
		return schema.MapStore{}, nil
	}
	fs, err := schema.LoadFileStore(os.DirFS(cfg.Schema.Dir), ".")
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", cfg.Schema.Dir).Int("schemata", fs.Len()).Msg("loaded schemata")
	return fs, nil
}

func roleStore(cfg *config.Config, pool *pgxpool.Pool) (auth.RoleStore, error) {
	if cfg.Auth.Source == "postgres" {
		if pool == nil {
			return nil, errors.New("auth source postgres requires a database pool")
		}
		return repository.NewRoleRepository(pool), nil
	}
	store, err := auth.ParseStaticKeys(cfg.Auth.Keys)
	if err != nil {
		return nil, fmt.Errorf("auth keys: %w", err)
	}
	return store, nil
}

// Start serves HTTP until ctx is cancelled or the server fails. On cancel
// the server is shut down and queued telemetry is flushed.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)
	defer stop()
	g.Go(func() error {
		defer stop()
		addr := ":" + s.Config.Server.Port
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Shutdown stops accepting requests, then drains the telemetry queue.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.Echo.Shutdown(ctx), s.Reporter.Close(ctx))
}
