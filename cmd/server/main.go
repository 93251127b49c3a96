package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dfryer1193/postfeed/feed/application"
	"github.com/dfryer1193/postfeed/feed/domain"
	"github.com/dfryer1193/postfeed/feed/persistence"
	"github.com/dfryer1193/postfeed/internal/middleware"
	"github.com/dfryer1193/postfeed/internal/web"
	"github.com/dfryer1193/postfeed/shared/config"
	"github.com/dfryer1193/postfeed/shared/db/sqlite"
	"github.com/dfryer1193/postfeed/shared/remote"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// openBookmarks returns the configured bookmark store and a function that
// releases it.
func openBookmarks(cfg config.Config) (domain.BookmarkRepository, func() error, error) {
	switch cfg.ProfileStore {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		return persistence.NewRedisBookmarkRepository(client, 0), client.Close, nil

	default:
		database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLitePath})
		if err := database.Connect(); err != nil {
			return nil, nil, err
		}
		return persistence.NewBookmarkRepository(database.DB()), database.Close, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	bookmarks, closeBookmarks, err := openBookmarks(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.ProfileStore).Msg("Failed to open bookmark store")
	}
	defer func() {
		if err := closeBookmarks(); err != nil {
			log.Error().Err(err).Msg("Failed to close bookmark store")
		}
	}()

	client := remote.NewClient(cfg.APIBaseURL, nil, cfg.APITimeout)

	states := application.NewStateStore(bookmarks, cfg.StateTTL)
	defer func() {
		if err := states.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close session state store")
		}
	}()

	handler, err := web.NewHandler(
		application.NewFeedService(client, client, bookmarks, states),
		application.NewDetailService(client, client, states),
		application.NewMarkdownRenderer(),
		cfg.BaseURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web handler")
	}

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	limiter := middleware.NewRateLimiter(limiterCtx, cfg.RateLimit, time.Minute)

	gin.SetMode(gin.ReleaseMode)
	service, err := newEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create router")
	}
	handler.Register(service, limiter.Limit())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(service)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Str("store", cfg.ProfileStore).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
