// Package services enthält die Geschäftslogik: Paywall, Login und Artikel-Listing.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"article-paywall/metrics"
	"article-paywall/models"
	"article-paywall/sessions"
	"article-paywall/store"
)

// ArticleRepository ist der Persistenz-Port für Artikel.
type ArticleRepository interface {
	List(ctx context.Context) ([]models.Article, error)
	Get(ctx context.Context, id uint) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
}

// ArticleService liefert Artikel aus und setzt das Seitenaufruf-Limit pro Session durch.
type ArticleService struct {
	articles          ArticleRepository
	maxPageViews      int
	placeholderOnMiss bool
	now               func() time.Time
	logger            *zap.Logger
}

// NewArticleService erstellt den Service. placeholderOnMiss legt bei unbekannter ID
// einen generischen Artikel an, statt ErrArticleNotFound zu liefern.
func NewArticleService(articles ArticleRepository, maxPageViews int, placeholderOnMiss bool, logger *zap.Logger) *ArticleService {
	return &ArticleService{
		articles:          articles,
		maxPageViews:      maxPageViews,
		placeholderOnMiss: placeholderOnMiss,
		now:               time.Now,
		logger:            logger,
	}
}

// List gibt alle Artikel zurück; die Session bleibt unberührt.
func (s *ArticleService) List(ctx context.Context) ([]models.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Show zählt den Seitenaufruf und liefert den Artikel, solange das Limit nicht
// überschritten ist. Der Zähler wird vor der Prüfung erhöht und nie zurückgesetzt.
// Parallele Requests derselben Session werden nicht serialisiert.
func (s *ArticleService) Show(ctx context.Context, sess *sessions.Session, id uint) (*models.Article, error) {
	views := sess.IncrementPageViews()
	if views > s.maxPageViews {
		metrics.PaywallRejections.Inc()
		s.logger.Debug("Pageview limit reached", zap.Int("page_views", views), zap.Uint("article_id", id))
		return nil, ErrPageViewLimit
	}

	article, err := s.articles.Get(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		if !s.placeholderOnMiss {
			return nil, ErrArticleNotFound
		}
		article = models.PlaceholderArticle(s.now())
		if err := s.articles.Create(ctx, article); err != nil {
			return nil, fmt.Errorf("create placeholder article: %w", err)
		}
		metrics.PlaceholderArticles.Inc()
		s.logger.Info("Stored placeholder article for unknown id",
			zap.Uint("requested_id", id), zap.Uint("id", article.ID))
	default:
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}

	metrics.ArticleViews.Inc()
	return article, nil
}
