package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/internal/routes"
	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/AnshRaj112/feedback-portal/pkg/logger"
)

func main() {
	started := time.Now()

	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	if envErr != nil {
		log.Debug().Msg("no .env file found")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongo.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect")
		}
	}()
	if err := mongo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure MongoDB indexes")
	}

	// Redis is optional; without it each instance limits in memory.
	var limiter middleware.WindowLimiter
	if cfg.RedisURI != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		limiter = database.NewSlidingWindow(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
		log.Info().Msg("Redis rate limiter enabled")
	} else {
		log.Warn().Msg("REDIS_URI not set, using in-memory rate limiter")
	}

	users := database.NewUsers(mongo.DB)
	feedback := database.NewFeedbackStore(mongo.DB)
	comments := database.NewCommentStore(mongo.DB)
	tokens := services.NewTokenService(cfg)

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Log:      log,
		Auth:     middleware.NewAuthenticator(tokens, log),
		Accounts: services.NewAccountService(users, tokens, cfg),
		Feedback: services.NewFeedbackService(feedback, cfg.StoreTimeout),
		Comments: services.NewCommentService(feedback, comments, users, cfg.StoreTimeout),
		Limiter:  limiter,
		Started:  started,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msg("feedback portal API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
