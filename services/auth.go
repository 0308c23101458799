package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"article-paywall/metrics"
	"article-paywall/models"
	"article-paywall/sessions"
	"article-paywall/store"
)

// UserRepository ist der Persistenz-Port für Benutzer.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService verwaltet den angemeldeten Benutzer einer Session.
// Es gibt keine Passwörter: wer einen existierenden Benutzernamen kennt, ist angemeldet.
type AuthService struct {
	users  UserRepository
	logger *zap.Logger
}

func NewAuthService(users UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Login meldet username in der Session an.
func (s *AuthService) Login(ctx context.Context, sess *sessions.Session, username string) (*models.User, error) {
	if username == "" {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, ErrUsernameRequired
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Logins.WithLabelValues("unknown_user").Inc()
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}

	sess.SetUserID(user.ID)
	metrics.Logins.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Uint("user_id", user.ID))
	return user, nil
}

// Logout entfernt nur den Benutzer; der Seitenaufruf-Zähler bleibt erhalten.
func (s *AuthService) Logout(sess *sessions.Session) {
	sess.ClearUserID()
}

// Clear setzt die Session vollständig zurück.
func (s *AuthService) Clear(sess *sessions.Session) {
	sess.Clear()
}

// CurrentUser löst den Benutzer der Session auf. Verweist die Session auf einen
// gelöschten Benutzer, wird der Verweis entfernt.
func (s *AuthService) CurrentUser(ctx context.Context, sess *sessions.Session) (*models.User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Info("Dropping stale user id from session", zap.Uint("user_id", id))
			sess.ClearUserID()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}
