package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"article-paywall/backup"
	"article-paywall/config"
	"article-paywall/storage"
	"article-paywall/store"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starting snapshot run...")

	cfg, err := config.LoadBackup()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// 1. Snapshot aus der Datenbank erstellen
	db, err := store.Open(&cfg.Config)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	snap, err := backup.Take(ctx, store.NewArticleStore(db), store.NewUserStore(db), time.Now())
	if err != nil {
		logging.Fatal("Failed to take snapshot", zap.Error(err))
	}
	data, err := snap.Encode()
	if err != nil {
		logging.Fatal("Failed to encode snapshot", zap.Error(err))
	}

	// 2. S3-Client erstellen
	s3Client, err := storage.NewS3Client(ctx, cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	bucket := storage.NewBucket(s3Client, cfg.S3Bucket, logging)

	// 3. Snapshot hochladen
	key := snap.Key(cfg.KeyPrefix)
	if err := bucket.Upload(ctx, key, backup.ContentType, data); err != nil {
		logging.Fatal("Snapshot upload failed", zap.Error(err))
	}
	logging.Info("Snapshot uploaded",
		zap.String("bucket", cfg.S3Bucket),
		zap.String("key", key),
		zap.Int("articles", len(snap.Articles)),
		zap.Int("users", len(snap.Users)),
		zap.Int("bytes", len(data)),
	)

	// 4. Alte Snapshots rotieren
	deleted, err := bucket.Rotate(ctx, cfg.KeyPrefix, cfg.KeepBackups)
	if err != nil {
		logging.Fatal("Snapshot rotation failed", zap.Error(err))
	}
	logging.Info("Snapshot run completed", zap.Int("rotated", len(deleted)))
}
