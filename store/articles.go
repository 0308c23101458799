package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"article-paywall/models"
)

// ArticleStore liest und schreibt Artikel.
type ArticleStore struct {
	db *gorm.DB
}

// NewArticleStore erstellt einen ArticleStore auf der gegebenen Verbindung.
func NewArticleStore(db *gorm.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// List gibt alle Artikel in stabiler Reihenfolge (nach ID) zurück.
func (s *ArticleStore) List(ctx context.Context) ([]models.Article, error) {
	articles := []models.Article{}
	if err := s.db.WithContext(ctx).Order("id asc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Get sucht einen Artikel per ID.
func (s *ArticleStore) Get(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create speichert einen neuen Artikel; die ID wird danach im Argument gesetzt.
func (s *ArticleStore) Create(ctx context.Context, article *models.Article) error {
	return s.db.WithContext(ctx).Create(article).Error
}
