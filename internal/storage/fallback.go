package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// fallbackKV writes to both stores and reads the secondary first. A write
// succeeds when either store accepts it, so only the secondary is guaranteed
// to hold the latest value; the primary serves reads the secondary misses.
type fallbackKV struct {
	primary   KV
	secondary KV
	logger    zerolog.Logger
}

// NewFallback combines a remote primary (e.g. S3) with a local secondary.
func NewFallback(primary, secondary KV, logger zerolog.Logger) KV {
	return &fallbackKV{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-kv").Logger(),
	}
}

// Get attempts the secondary first, then the primary.
func (f *fallbackKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := f.secondary.Get(ctx, key)
	if err == nil {
		return data, nil
	}

	if errors.Is(err, ErrNotFound) {
		f.logger.Debug().Str("key", key).Msg("key not in secondary, trying primary")
	} else {
		f.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to read from secondary, falling back to primary")
	}

	return f.primary.Get(ctx, key)
}

// Put writes to both stores and fails only when both writes fail.
func (f *fallbackKV) Put(ctx context.Context, key string, value []byte) error {
	primaryErr := f.primary.Put(ctx, key, value)
	if primaryErr != nil {
		f.logger.Warn().Err(primaryErr).Str("key", key).Msg("failed to write to primary")
	}

	secondaryErr := f.secondary.Put(ctx, key, value)
	if secondaryErr != nil {
		f.logger.Warn().Err(secondaryErr).Str("key", key).Msg("failed to write to secondary")
	}

	if primaryErr != nil && secondaryErr != nil {
		return fmt.Errorf("failed to write key %s: %w", key, errors.Join(primaryErr, secondaryErr))
	}
	return nil
}

func (f *fallbackKV) Close() error {
	return errors.Join(f.primary.Close(), f.secondary.Close())
}
