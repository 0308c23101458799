package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// BackupConfig erweitert Config um das S3-Ziel des Snapshot-Tools.
type BackupConfig struct {
	Config

	S3Endpoint  string `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	S3Region    string `envconfig:"BACKUP_S3_REGION" required:"true"`
	S3Bucket    string `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	S3AccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	KeyPrefix   string `envconfig:"BACKUP_KEY_PREFIX" default:"snapshot-"`
	KeepBackups int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// LoadBackup lädt die Konfiguration des Snapshot-Tools.
func LoadBackup() (*BackupConfig, error) {
	_ = godotenv.Load()
	var c BackupConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate prüft zusätzlich zur Server-Konfiguration die Rotationseinstellung.
func (c *BackupConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.KeepBackups < 1 {
		return fmt.Errorf("KEEP_BACKUPS must be at least 1, got %d", c.KeepBackups)
	}
	return nil
}
