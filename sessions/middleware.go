package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	contextKey = "session"
	managerKey = "session_manager"
)

// Manager verbindet Cookie-Token und Store für gin-Handler.
type Manager struct {
	store      Store
	cookieName string
	secure     bool
	ttl        time.Duration
	logger     *zap.Logger
}

// NewManager erstellt einen Manager. Das Cookie lebt so lange wie die Session im Store.
func NewManager(store Store, cookieName string, secure bool, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		secure:     secure,
		ttl:        ttl,
		logger:     logger,
	}
}

// Middleware lädt die Session vor dem Handler. Handler, die die Session ändern,
// müssen Save aufrufen, bevor sie antworten; sonst geht ein Schreibfehler nach
// der bereits gesendeten Antwort nur noch ins Log.
// Das Cookie wird vor dem Handler gesetzt, weil der Handler die Header bereits flusht.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.load(c)
		if err != nil {
			m.logger.Error("Failed to load session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cookieName, sess.Token(), int(m.ttl.Seconds()), "/", "", m.secure, true)
		c.Set(contextKey, sess)
		c.Set(managerKey, m)

		c.Next()

		if err := m.save(c.Request.Context(), sess); err != nil {
			m.logger.Error("Failed to persist session after response", zap.String("path", c.FullPath()), zap.Error(err))
		}
	}
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	if !sess.Modified() {
		return nil
	}
	data := sess.Data()
	var err error
	if data.Empty() {
		err = m.store.Delete(ctx, sess.Token())
	} else {
		err = m.store.Save(ctx, sess.Token(), data)
	}
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	sess.modified = false
	return nil
}

func (m *Manager) load(c *gin.Context) (*Session, error) {
	token, err := c.Cookie(m.cookieName)
	if err == nil {
		if _, parseErr := uuid.Parse(token); parseErr == nil {
			data, err := m.store.Load(c.Request.Context(), token)
			switch {
			case err == nil:
				return New(token, data), nil
			case errors.Is(err, ErrInvalid):
				m.logger.Warn("Discarding undecodable session", zap.Error(err))
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
	}
	// Unbekannte Tokens werden nie übernommen, sondern neu ausgestellt.
	return New(uuid.NewString(), Data{}), nil
}

// From gibt die Session des Requests zurück. Die Middleware muss vorher gelaufen sein.
func From(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}

// Save schreibt geänderte Session-Daten sofort in den Store.
func Save(c *gin.Context) error {
	return c.MustGet(managerKey).(*Manager).save(c.Request.Context(), From(c))
}
