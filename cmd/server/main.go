package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/blob"
	"github.com/atelierhq/curator-api/internal/config"
	"github.com/atelierhq/curator-api/internal/coordinator"
	"github.com/atelierhq/curator-api/internal/handlers"
	"github.com/atelierhq/curator-api/internal/handles"
	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/middleware"
	"github.com/atelierhq/curator-api/internal/migration"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/notification"
	"github.com/atelierhq/curator-api/internal/rate"
	"github.com/atelierhq/curator-api/internal/repository"
	"github.com/atelierhq/curator-api/internal/routes"
	"github.com/atelierhq/curator-api/internal/store"
	"github.com/atelierhq/curator-api/internal/verification"
	"github.com/atelierhq/curator-api/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config *config.Config
	logger zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	goose.SetLogger(migration.NewGooseAdapter(logger))

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	app := &application{
		config: cfg,
		logger: logger,
	}

	// Document store and repositories.
	docs := store.NewPostgresStore(db, cfg.DatabaseURL, logger)
	requestRepo := repository.NewRequestRepository(docs)
	profileRepo := repository.NewProfileRepository(docs)
	inviteRepo := repository.NewInviteRepository(docs)
	adminRepo := repository.NewAdminRepository(db)
	registry := handles.NewRegistry(docs)

	// Seed the first superadmin so a fresh deployment has an operator to log
	// in with. A no-op once the account exists.
	if cfg.Bootstrap.AdminEmail != "" {
		if _, err := adminRepo.GetAdminByEmail(cfg.Bootstrap.AdminEmail); errors.Is(err, sql.ErrNoRows) {
			if _, err := adminRepo.CreateAdmin(cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, "Bootstrap Admin", []models.AdminRole{models.RoleSuperAdmin}); err != nil {
				logger.Fatal().Err(err).Msg("Failed to seed bootstrap admin")
			}
			logger.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("bootstrap superadmin created")
		}
	}

	// Onboarding email delivery; fall back to logging when SMTP is absent.
	var notifier notification.Notifier
	if smtp, err := notification.NewSMTPNotifier(cfg.Email); err != nil {
		logger.Warn().Err(err).Msg("SMTP not configured; invites will be logged, not sent")
		notifier = notification.NewLogNotifier(logger)
	} else {
		notifier = smtp
	}

	// Lifecycles and the coordinator the console talks to.
	verificationLifecycle := verification.NewLifecycle(requestRepo, profileRepo, registry)
	inviteLifecycle := invites.NewLifecycle(inviteRepo, notifier, cfg.PublicOrigin)
	coord := coordinator.New(verificationLifecycle, inviteLifecycle, logger)

	// Redis-backed rate limiting for login and public onboarding.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	windows := rate.NewRedisWindowStore(redisClient)
	loginLimiter := rate.NewLimiter(windows, cfg.Rate.LoginPerMinute)
	onboardingLimiter := rate.NewLimiter(windows, cfg.Rate.OnboardingPerMinute)

	// Portfolio media store, used for best-effort cleanup on removal.
	var media blob.Storage
	if cfg.Media.Endpoint != "" {
		minioClient, err := minio.New(cfg.Media.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Media.AccessKey, cfg.Media.SecretKey, ""),
			Secure: cfg.Media.UseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create media store client")
		}
		media = blob.NewS3Storage(minioClient, cfg.Media.Bucket)
	}

	// Handlers.
	authHandler := handlers.NewAuthHandler(adminRepo, loginLimiter, cfg.JWTSecret, logger)
	adminHandler := handlers.NewAdminHandler(adminRepo, logger)
	verificationHandler := handlers.NewVerificationHandler(coord, requestRepo, media, logger)
	inviteHandler := handlers.NewInviteHandler(coord, inviteLifecycle, logger)
	onboardingHandler := handlers.NewOnboardingHandler(coord, inviteLifecycle, onboardingLimiter, logger)
	eventsHandler := handlers.NewEventsHandler(docs, logger)

	router := routes.NewRouter(authHandler, adminHandler, verificationHandler, inviteHandler, onboardingHandler, eventsHandler)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{cfg.PublicOrigin}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Background invite expiry sweep.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := worker.NewSweeper(worker.SweeperConfig{
		Interval: cfg.Invites.SweepInterval,
		TTL:      cfg.Invites.TTL,
	}, inviteLifecycle, logger)
	go func() {
		if err := sweeper.Start(sweepCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("invite sweeper exited")
		}
	}()

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
