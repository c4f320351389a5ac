package storage

import (
	"context"
	"fmt"

	"aqar_scraper/config"
	"aqar_scraper/models"
)

// DatasetStore owns the persisted dataset and its run-metadata sidecar.
// Save replaces the whole dataset; the store must keep the previous data
// intact until the new write has fully succeeded.
type DatasetStore interface {
	Load(ctx context.Context) ([]models.Record, error)
	Save(ctx context.Context, records []models.Record) error
	LoadMeta(ctx context.Context) (*models.RunMetadata, error)
	SaveMeta(ctx context.Context, meta *models.RunMetadata) error
	Close() error
}

// NewStore opens the configured backend.
func NewStore(ctx context.Context, cfg *config.StoreConfig) (DatasetStore, error) {
	switch cfg.Backend {
	case "csv":
		return NewCSVStore(cfg.DatasetPath, cfg.MetadataPath), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
