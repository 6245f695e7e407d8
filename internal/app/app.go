package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"sidebyside/internal/config"
	"sidebyside/internal/dataprocessing"
	"sidebyside/internal/errors"
	"sidebyside/internal/history"
	"sidebyside/internal/infrastructure"
	customMiddleware "sidebyside/internal/middleware"
	"sidebyside/internal/services"
	handlers "sidebyside/internal/transport/http"
	"sidebyside/internal/validation"
	ws "sidebyside/internal/websocket"
)

// BuildTime is set at compile time with -ldflags "-X sidebyside/internal/app.BuildTime=..."
var BuildTime = "dev"

// Application represents the main application container
type Application struct {
	Config            *config.Config
	Router            *chi.Mux
	Server            *http.Server
	Logger            *slog.Logger
	OTelProviders     *infrastructure.OTelProviders
	Metrics           *infrastructure.SurveyMetrics
	WebSocketHub      *ws.Hub
	History           *history.Store
	ComparisonService *services.ComparisonService
	HealthService     *services.HealthService
	ErrorHandler      *errors.ErrorHandler
}

// NewApplication loads configuration and the process logger, then wires
// the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires an application from an explicit configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  errors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.NewSurveyMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create survey metrics: %w", err)
		}
		a.Metrics = metrics
	}

	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	opts := []services.ServiceOption{
		services.WithPublisher(hub),
		services.WithMetrics(a.Metrics),
		services.WithDefaultSources(a.Config.Parser.PrimarySource, a.Config.Parser.SecondarySource),
		services.WithValidator(validation.NewFileValidator(a.Logger, a.Config.Parser.MaxUploadBytes)),
	}

	// Health takes an interface; a nil *history.Store must stay a nil interface.
	var pinger services.Pinger
	if a.Config.History.Enabled {
		store, err := history.Open(ctx, a.Config.History.Path, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		a.History = store
		pinger = store
		opts = append(opts, services.WithHistory(store))
	}

	parser := NewParser(a.Config.Parser, a.Logger, a.Metrics)
	a.ComparisonService = services.NewComparisonService(parser, a.Logger, opts...)
	a.HealthService = services.NewHealthService(config.AppVersion, BuildTime, pinger, hub, a.Logger)
	return nil
}

// NewParser builds the survey parser from the parser section of the config.
// observer may be nil.
func NewParser(cfg config.ParserConfig, logger *slog.Logger, observer *infrastructure.SurveyMetrics) *dataprocessing.Parser {
	return dataprocessing.NewParser(
		dataprocessing.DefaultAliases(),
		dataprocessing.WithLogger(logger),
		dataprocessing.WithLayout(LayoutConfig(cfg)),
		dataprocessing.WithObserver(observer),
	)
}

// LayoutConfig applies template overrides from cfg to the built-in layout.
func LayoutConfig(cfg config.ParserConfig) dataprocessing.LayoutConfig {
	layout := dataprocessing.DefaultLayoutConfig()
	layout.PrimaryTag = cfg.PrimarySource
	if cfg.KeywordScanRows > 0 {
		layout.KeywordScanRows = cfg.KeywordScanRows
	}

	override := func(dst *dataprocessing.Template, src *config.TemplateConfig) {
		if src == nil {
			return
		}
		*dst = dataprocessing.Template{
			HeaderRow:  src.HeaderRow,
			HeaderCols: src.HeaderCols,
			DataRow:    src.DataRow,
			DataCols:   src.DataCols,
		}
	}
	override(&layout.PrimaryTemplate, cfg.PrimaryTemplate)
	override(&layout.OtherTemplate, cfg.OtherTemplate)
	override(&layout.Fallback, cfg.FallbackTemplate)
	return layout
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP first; they do not wrap the ResponseWriter.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket and metrics keep a light chain so the upgrade can hijack the connection.
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))

		r.Handle("/ws", handlers.NewWebSocketHandler(
			a.WebSocketHub,
			a.Config.WebSocket.ReadBufferSize,
			a.Config.WebSocket.WriteBufferSize,
			a.allowedOrigins(),
			a.ErrorHandler,
			a.Logger,
		))
		if a.OTelProviders.PrometheusHTTP != nil {
			r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
		}
	})

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(errors.NewErrorMiddleware(a.ErrorHandler, a.Logger).Handler)
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   a.Config.Security.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
				ExposedHeaders:   []string{customMiddleware.RequestIDHeader},
				AllowCredentials: false,
				MaxAge:           300,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		compareHandler := handlers.NewCompareHandler(a.ComparisonService, a.ErrorHandler, a.Config.Parser.MaxUploadBytes, a.Logger)
		r.Mount("/compare", compareHandler.Routes())

		var store handlers.HistoryReader
		if a.History != nil {
			store = a.History
		}
		historyHandler := handlers.NewHistoryHandler(store, a.Config.History.ListLimit, a.ErrorHandler, a.Logger)
		r.Mount("/comparisons", historyHandler.Routes())
	})
}

func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts serving in the background. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.Bool("history", a.History != nil))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.Server != nil {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	a.Logger.InfoContext(ctx, "Stopping websocket hub",
		slog.Int("clients", a.WebSocketHub.ClientCount()))
	a.WebSocketHub.Stop()

	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing history store", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted or the listener fails.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	// The run context may already be cancelled; shutdown gets its own.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
