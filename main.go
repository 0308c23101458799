package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"article-paywall/api"
	"article-paywall/config"
	"article-paywall/metrics"
	"article-paywall/services"
	"article-paywall/sessions"
	"article-paywall/store"
)

func main() {
	logging, err := newLogger()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database
	db, err := store.Open(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.", zap.String("driver", cfg.DBDriver))

	logging.Info("Running database auto-migration...")
	if err := store.Migrate(db); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	if cfg.SeedDemo {
		store.Seed(db, logging)
	}

	// Setup Sessions
	sessionStore, memoryStore := newSessionStore(cfg, logging)
	sessionManager := sessions.NewManager(sessionStore, cfg.SessionCookieName, cfg.SessionCookieSecure, cfg.SessionTTL, logging)

	// Setup Services
	articleService := services.NewArticleService(store.NewArticleStore(db), cfg.MaxPageViews, cfg.ArticlePlaceholderOnMiss, logging)
	authService := services.NewAuthService(store.NewUserStore(db), logging)

	router := api.NewRouter(api.Deps{
		DB:       db,
		Articles: articleService,
		Auth:     authService,
		Sessions: sessionManager,
		Logger:   logging,
	})

	// Setup Cron
	cronScheduler := cron.New()
	if memoryStore != nil {
		_, err := cronScheduler.AddFunc(cfg.SessionSweepSchedule, func() {
			removed := memoryStore.Sweep()
			metrics.SessionsSwept.Add(float64(removed))
			logging.Debug("Expired sessions swept", zap.Int("removed", removed), zap.Int("remaining", memoryStore.Len()))
		})
		if err != nil {
			logging.Fatal("Invalid session sweep schedule", zap.String("schedule", cfg.SessionSweepSchedule), zap.Error(err))
		}
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort), zap.String("session_backend", cfg.SessionBackend))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if gin.Mode() == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newSessionStore gibt zusätzlich den MemoryStore zurück, damit der Sweeper ihn aufräumen kann.
func newSessionStore(cfg *config.Config, logging *zap.Logger) (sessions.Store, *sessions.MemoryStore) {
	if cfg.SessionBackend == config.SessionBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logging.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		logging.Info("Using redis session store.", zap.String("addr", cfg.RedisAddr))
		return sessions.NewRedisStore(client, cfg.SessionTTL), nil
	}

	logging.Info("Using in-memory session store.")
	memoryStore := sessions.NewMemoryStore(cfg.SessionTTL)
	return memoryStore, memoryStore
}
