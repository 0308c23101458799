package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"article-paywall/services"
	"article-paywall/sessions"
)

type loginRequest struct {
	Username string `json:"username"`
}

// saveSession schreibt die Session vor der Antwort. Bei einem Fehler wurde
// bereits 500 gesendet und der Handler muss abbrechen.
func saveSession(c *gin.Context, log *zap.Logger) bool {
	if err := sessions.Save(c); err != nil {
		respondError(c, err, log)
		return false
	}
	return true
}

func setupSessionRoutes(rg *gin.RouterGroup, auth *services.AuthService, log *zap.Logger) {
	rg.DELETE("/clear", func(c *gin.Context) {
		auth.Clear(sessions.From(c))
		if !saveSession(c, log) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			// Ein unlesbarer Body zählt wie ein fehlender Benutzername.
			req = loginRequest{}
		}

		user, err := auth.Login(c.Request.Context(), sessions.From(c), req.Username)
		if err != nil {
			respondError(c, err, log)
			return
		}
		if !saveSession(c, log) {
			return
		}
		c.JSON(http.StatusOK, user)
	})

	rg.DELETE("/logout", func(c *gin.Context) {
		auth.Logout(sessions.From(c))
		if !saveSession(c, log) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/check_session", func(c *gin.Context) {
		user, err := auth.CurrentUser(c.Request.Context(), sessions.From(c))
		if !saveSession(c, log) {
			return
		}
		if err != nil {
			respondError(c, err, log)
			return
		}
		c.JSON(http.StatusOK, user)
	})
}
