package main

import (
	"commercebot/internal/config"
	"commercebot/internal/infrastructure"
	"commercebot/internal/interfaces"
	"commercebot/internal/interfaces/http"
	"commercebot/internal/repository"
	"commercebot/internal/usecases"
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, embedded SQLite otherwise
	var store interfaces.Store
	if cfg.DatabaseURL != "" {
		pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		store = repository.NewPostgresStore(pgClient.Pool)
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteClient, err := infrastructure.NewSQLiteClient(ctx, cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		store = repository.NewSQLiteStore(sqliteClient.DB)
		logger.Info().Str("path", cfg.SQLitePath).Msg("using embedded SQLite")
	}
	defer store.Close()

	// Dedup markers and rate windows move to Redis when it is available
	var (
		processed interfaces.ProcessedMessageStore = store
		windows   interfaces.RateWindowStore       = store
		pingers                                    = []http.Pinger{store}
	)
	if cfg.RedisURL != "" {
		redisStore, err := infrastructure.NewRedisStore(ctx, cfg.RedisURL, cfg.DedupRetention, cfg.RateLimitWindow)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		processed, windows = redisStore, redisStore
		pingers = append(pingers, redisStore)
		logger.Info().Msg("connected to Redis")
	}

	// Sync Data
	if cfg.CatalogueCSV != "" {
		n, err := usecases.SyncCatalogueFile(ctx, store, cfg.CatalogueCSV, logger)
		if err != nil {
			logger.Warn().Err(err).Str("file", cfg.CatalogueCSV).Msg("catalogue sync failed")
		} else {
			logger.Info().Int("items", n).Msg("catalogue synced")
		}
	}

	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		logger.Warn().Msg("WHATSAPP_ACCESS_TOKEN or WHATSAPP_PHONE_NUMBER_ID not set: replies will fail")
	}
	messenger := infrastructure.NewWhatsAppBusinessClient(cfg.MessagesURL(), cfg.AccessToken, cfg.SendTimeout)

	// Initialize Usecases & Services
	audit := usecases.NewMessageLogger(store, logger)
	limiter := usecases.NewRateLimiter(windows, cfg.RateLimitWindow, cfg.RateLimitMax, logger)
	webhook := usecases.NewWebhookService(
		usecases.NewSignatureVerifier(cfg.AppSecret, logger),
		usecases.NewDeduplicator(processed),
		limiter,
		store,
		usecases.NewBotFlow(store, usecases.BotFlowConfig{
			LeadSource:   cfg.LeadSource,
			HistoryLimit: cfg.HistoryLimit,
		}, logger),
		usecases.NewOutboundGateway(messenger, audit),
		audit,
		logger.With().Str("component", "webhook").Logger(),
	)

	authUsecase := usecases.NewAuthUsecase(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.JWTSecret)
	if !authUsecase.Enabled() {
		logger.Warn().Msg("admin API login disabled: set ADMIN_PASSWORD_HASH and JWT_SECRET to enable")
	}

	janitor, err := usecases.NewJanitor(processed, windows, limiter, cfg.DedupRetention, cfg.PruneSchedule, logger.With().Str("component", "janitor").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid PRUNE_SCHEDULE")
	}
	go janitor.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	http.SetupRoutes(router, http.Dependencies{
		Webhook:      webhook,
		Auth:         authUsecase,
		Dashboard:    usecases.NewDashboardUsecase(store),
		Middleware:   http.NewMiddleware(cfg.JWTSecret),
		Pingers:      pingers,
		VerifyToken:  cfg.VerifyToken,
		DisplayPhone: cfg.DisplayPhone,
		Logger:       logger,
	})

	srv := &nethttp.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting commercebot server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
