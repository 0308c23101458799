// Package backup exportiert Artikel und Benutzer als komprimierten JSON-Snapshot.
package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"article-paywall/models"
)

// ContentType der hochgeladenen Snapshots.
const ContentType = "application/gzip"

type ArticleLister interface {
	List(ctx context.Context) ([]models.Article, error)
}

type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// Snapshot ist der Inhalt einer Sicherung.
type Snapshot struct {
	TakenAt  time.Time        `json:"taken_at"`
	Articles []models.Article `json:"articles"`
	Users    []models.User    `json:"users"`
}

// Take liest alle Artikel und Benutzer.
func Take(ctx context.Context, articles ArticleLister, users UserLister, now time.Time) (*Snapshot, error) {
	a, err := articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	u, err := users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &Snapshot{TakenAt: now.UTC(), Articles: a, Users: u}, nil
}

// Encode schreibt den Snapshot als gzip-komprimiertes JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gzipWriter).Encode(s); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Key bildet den Objektnamen aus Präfix und Zeitpunkt des Snapshots.
func (s *Snapshot) Key(prefix string) string {
	return fmt.Sprintf("%s%s.json.gz", prefix, s.TakenAt.Format("2006-01-02T15-04-05Z"))
}
