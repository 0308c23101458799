package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"article-paywall/services"
	"article-paywall/sessions"
)

func setupArticleRoutes(rg *gin.RouterGroup, svc *services.ArticleService, log *zap.Logger) {
	rg.GET("/articles", func(c *gin.Context) {
		articles, err := svc.List(c.Request.Context())
		if err != nil {
			respondError(c, err, log)
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.GET("/articles/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
			return
		}

		article, err := svc.Show(c.Request.Context(), sessions.From(c), uint(id))
		// Auch abgelehnte Aufrufe zählen; ohne gespeicherten Zähler gibt es keine Antwort.
		if !saveSession(c, log) {
			return
		}
		if err != nil {
			respondError(c, err, log)
			return
		}
		c.JSON(http.StatusOK, article)
	})
}
