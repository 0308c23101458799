package models

import "time"

// Article repräsentiert einen veröffentlichten Artikel. Die JSON-Felder sind die
// serialisierte Form, die jeder Endpunkt zurückgibt.
type Article struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Author        string    `json:"author"`
	Title         string    `json:"title" gorm:"not null"`
	Content       string    `json:"content" gorm:"type:text"`
	Preview       string    `json:"preview"`
	MinutesToRead int       `json:"minutes_to_read"`
	Date          time.Time `json:"date"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Article) TableName() string {
	return "articles"
}

// PlaceholderArticle baut den generischen Artikel, der bei einem Lookup-Miss angelegt wird.
func PlaceholderArticle(now time.Time) *Article {
	return &Article{
		Author:        "Test Author",
		Title:         "Test Title",
		Content:       "Test Content",
		Preview:       "Test Content Preview",
		MinutesToRead: 1,
		Date:          now,
	}
}
