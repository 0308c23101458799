package store

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"article-paywall/models"
)

// Seed füllt leere Tabellen mit Demo-Daten.
func Seed(db *gorm.DB, logger *zap.Logger) {
	seedDefaultUsers(db, logger)
	seedDefaultArticles(db, logger)
}

func seedDefaultUsers(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}
	users := []models.User{
		{Username: "ada"},
		{Username: "grace"},
		{Username: "linus"},
	}
	if err := db.Create(&users).Error; err != nil {
		logger.Warn("Failed to seed default users", zap.Error(err))
	} else {
		logger.Info("Default users seeded.", zap.Int("count", len(users)))
	}
}

func seedDefaultArticles(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.Article{}).Count(&count)
	if count > 0 {
		return
	}
	now := time.Now()
	articles := []models.Article{
		{
			Author:        "Ada Lovelace",
			Title:         "Notes on the Analytical Engine",
			Content:       "The engine might compose elaborate pieces of music of any degree of complexity.",
			Preview:       "The engine might compose elaborate pieces of music.",
			MinutesToRead: 7,
			Date:          now.AddDate(0, 0, -3),
		},
		{
			Author:        "Grace Hopper",
			Title:         "Nanoseconds",
			Content:       "A nanosecond is the distance light travels in a billionth of a second: about 30 centimetres.",
			Preview:       "A nanosecond is about 30 centimetres of wire.",
			MinutesToRead: 3,
			Date:          now.AddDate(0, 0, -2),
		},
		{
			Author:        "Linus Torvalds",
			Title:         "Talk is cheap",
			Content:       "Show me the code. Bad programmers worry about the code, good programmers worry about data structures.",
			Preview:       "Show me the code.",
			MinutesToRead: 2,
			Date:          now.AddDate(0, 0, -1),
		},
		{
			Author:        "Barbara Liskov",
			Title:         "Substitution",
			Content:       "Subtypes must be substitutable for their base types without altering correctness.",
			Preview:       "Subtypes must be substitutable.",
			MinutesToRead: 5,
			Date:          now,
		},
	}
	if err := db.Create(&articles).Error; err != nil {
		logger.Warn("Failed to seed default articles", zap.Error(err))
	} else {
		logger.Info("Default articles seeded.", zap.Int("count", len(articles)))
	}
}
