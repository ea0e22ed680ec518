// Package storage picks the output backend for processed images
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/UnendingLoop/ImageResizer/internal/config"
	"github.com/UnendingLoop/ImageResizer/internal/storage/localstorage"
	"github.com/UnendingLoop/ImageResizer/internal/storage/miniostorage"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// ImageStorage - контракт для записи результатов
type ImageStorage interface {
	MakeDir(ctx context.Context, dir string) error
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

const connectAttempts = 3

// NewImgStorage returns the backend selected by cfg.Backend.
func NewImgStorage(ctx context.Context, cfg config.Storage, delay time.Duration) (ImageStorage, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return localstorage.New(), nil
	case config.BackendMinio:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	strategy := retry.Strategy{Attempts: connectAttempts, Delay: delay, Backoff: 1}
	return connectWithRetry(ctx, strategy, func(ctx context.Context) (ImageStorage, error) {
		zlog.Logger.Info().Str("endpoint", cfg.Endpoint).Msg("Connecting to IMG-storage...")
		client, err := miniostorage.NewMinioClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		zlog.Logger.Info().Str("bucket", cfg.Bucket).Msg("Successfully connected IMG-storage!")
		return client, nil
	})
}

func connectWithRetry(ctx context.Context, strategy retry.Strategy, connect func(context.Context) (ImageStorage, error)) (ImageStorage, error) {
	var strg ImageStorage
	err := retry.Do(func() error {
		// отмененный контекст не ретраим
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := connect(ctx)
		if err != nil {
			zlog.Logger.Warn().Err(err).Dur("retry_in", strategy.Delay).Msg("Failed to init connection to IMG-storage")
			return err
		}
		strg = s
		return nil
	}, strategy)
	if err != nil {
		return nil, fmt.Errorf("img-storage unavailable after %d attempts: %w", strategy.Attempts, err)
	}

	return strg, nil
}
