package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nestfinance/nest-core/internal/config"
	"github.com/nestfinance/nest-core/internal/docstore"
	"github.com/nestfinance/nest-core/internal/docstore/memory"
	"github.com/nestfinance/nest-core/internal/docstore/postgres"
	"github.com/nestfinance/nest-core/internal/export"
	"github.com/nestfinance/nest-core/internal/handler"
	"github.com/nestfinance/nest-core/internal/middleware"
	"github.com/nestfinance/nest-core/internal/session"
	"github.com/nestfinance/nest-core/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Select the document store backend. With no DATABASE_URL the in-memory
	// store serves, which is enough for local development.
	var docs docstore.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}

		pgStore := postgres.NewStore(pool)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure document schema")
		}
		docs = pgStore
		log.Info().Msg("Connected to database")
	} else {
		memStore := memory.NewStore()
		defer memStore.Close()
		docs = memStore
		log.Warn().Msg("DATABASE_URL not set, using in-memory document store")
	}

	// Initialize sessions and the revision bridge
	sessions := session.NewManager(docs, cfg.SessionIdleTTL)
	defer sessions.Close()

	hub := websocket.NewHub()
	bridge := websocket.NewBridge(hub)
	defer bridge.Close()
	// Evicted sessions must release their revision watchers; a returning
	// user gets a fresh store and the bridge rebinds to it.
	sessions.OnEvict(bridge.StopUser)

	// Initialize snapshot export when S3 is configured
	var exporter *export.Exporter
	if cfg.S3.Bucket != "" {
		uploader, err := export.NewS3Uploader(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 uploader")
		}
		exporter = export.NewExporter(uploader)
	} else {
		log.Warn().Msg("S3_BUCKET not set, snapshot export disabled")
	}

	// Select the authentication middleware. Production requires Auth0;
	// development falls back to the trusted X-User-ID header.
	var authenticate echo.MiddlewareFunc
	if cfg.Auth0Domain != "" {
		authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		authenticate = authMiddleware.Authenticate()
	} else {
		authenticate = middleware.DevAuthenticate()
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(sessions)
	goalHandler := handler.NewGoalHandler(sessions)
	budgetHandler := handler.NewBudgetHandler(sessions)
	accountHandler := handler.NewAccountHandler(sessions)
	profileHandler := handler.NewProfileHandler(sessions)
	dashboardHandler := handler.NewDashboardHandler(sessions)
	exportHandler := handler.NewExportHandler(sessions, exporter)
	wsHandler := handler.NewWebSocketHandler(hub, bridge, sessions, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authenticate, rateLimiter, transactionHandler, goalHandler, budgetHandler, accountHandler, profileHandler, dashboardHandler, exportHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
