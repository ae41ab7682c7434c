// Package app wires configuration, storage, repositories and services into the
// components shared by the HTTP server and the terminal client.
package app

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"

	"github.com/rs/zerolog"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	KV       storage.KV
	Store    repository.LocalProductStore
	Remote   repository.RemoteProductSource
	Products service.ProductService
	Wizard   service.WizardService
}

// New opens the configured storage backend, loads the locally added products
// and builds the services on top of them.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := repository.NewLocalProductStore(kv, cfg.Storage.Key, logger)
	store.Load(ctx)

	remote := repository.NewRemoteProductRepository(repository.RemoteConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: time.Duration(cfg.Remote.Timeout) * time.Second,
		Limit:   cfg.Remote.Limit,
	}, nil, logger)

	return &App{
		Config:   cfg,
		KV:       kv,
		Store:    store,
		Remote:   remote,
		Products: service.NewProductService(store, remote, logger),
		Wizard:   service.NewWizardService(store, remote, logger),
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.KV.Close()
}
