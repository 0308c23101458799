// Package api stellt die HTTP-Endpunkte über gin bereit.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"article-paywall/services"
	"article-paywall/sessions"
	"article-paywall/store"
)

// Deps bündelt alles, was die Routen brauchen.
type Deps struct {
	DB       *gorm.DB
	Articles *services.ArticleService
	Auth     *services.AuthService
	Sessions *sessions.Manager
	Logger   *zap.Logger
}

// NewRouter baut den gin-Router. /metrics und /healthz laufen ohne Session.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(d.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context(), d.DB); err != nil {
			d.Logger.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rg := router.Group("/", d.Sessions.Middleware())
	setupArticleRoutes(rg, d.Articles, d.Logger)
	setupSessionRoutes(rg, d.Auth, d.Logger)

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
