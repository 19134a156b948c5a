package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"orderapi/internal/config"
	"orderapi/internal/database"
	"orderapi/internal/handlers"
	"orderapi/internal/middleware"
	"orderapi/internal/repositories"
	"orderapi/internal/services"
	"orderapi/pkg/obs"
	"orderapi/pkg/rabbitmq"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// run returns only after its deferred cleanups have completed.
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server gracefully stopped")
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel)
	if cfg.JWTSecret == "change-me" {
		log.Warn().Msg("JWT_SECRET is the built-in default; set it before exposing the API")
	}

	ctx := context.Background()

	// --- Tracing (optional) ---
	if cfg.OTelEndpoint != "" {
		shutdown, err := obs.InitTracer(ctx, cfg.ServiceName, cfg.OTelEndpoint, cfg.Environment)
		if err != nil {
			log.Error().Err(err).Msg("Tracing disabled")
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					log.Error().Err(err).Msg("Failed to flush traces")
				}
			}()
		}
	}

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close(db)

	// --- RabbitMQ order events (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			log.Error().Err(err).Msg("RabbitMQ unavailable, order events disabled")
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
				log.Error().Err(err).Msg("Failed to start order event consumer")
			}
		}
	}

	app, authService := newApp(cfg, db, publisher)

	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// --- Start HTTP Server ---
	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(app, cfg.AppPort, quit)
}

// serve listens on addr until quit fires or the listener fails. A failed
// listener is returned as an error instead of exiting, so the caller's
// cleanups still run.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	return nil
}

// newApp wires repositories, services and handlers into a Fiber app.
// publisher may be nil.
func newApp(cfg config.Config, db *gorm.DB, publisher services.EventPublisher) (*fiber.App, *services.AuthService) {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	authService := services.NewAuthService(userRepo, tokens)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(repositories.NewGORMTxManager(db), orderRepo, publisher)

	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(middleware.RequestLogger())
	app.Use(recover.New())
	app.Use(middleware.Tracing())
	app.Use("/api", cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	// --- Routes ---
	requireAuth := middleware.AuthRequired(tokens)
	handlers.NewHealthHandler(db, cfg.ServiceName).RegisterRoutes(app)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api, requireAuth)
	handlers.NewProductHandler(productService).RegisterRoutes(api, requireAuth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, requireAuth)
	handlers.NewUserHandler(authService).RegisterRoutes(api, requireAuth)

	return app, authService
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
