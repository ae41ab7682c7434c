package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"product-catalog/internal/config"

	"github.com/rs/zerolog"
)

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (KV, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info().Msg("using in-memory storage; added products will not survive a restart")
		return NewMemoryKV(), nil

	case config.BackendFile:
		return NewFileKV(cfg.Storage.Path, logger)

	case config.BackendSQLite:
		return NewSQLiteKV(ctx, cfg.Storage.Path, logger)

	case config.BackendPostgres:
		kv, err := OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		return kv, nil

	case config.BackendS3:
		local, err := NewFileKV(filepath.Clean(cfg.Storage.Path), logger)
		if err != nil {
			return nil, err
		}

		remote, err := NewS3KV(ctx, S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		}, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 storage, falling back to local file system only")
			return local, nil
		}
		return NewFallback(remote, local, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
