package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/model"
	"product-catalog/internal/repository"
	"product-catalog/internal/storage"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the storage backend and the catalogue are reachable",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLoggerTo(cfg.Logger, os.Stderr)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	kv, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(out, "storage (%s): FAILED: %v\n", cfg.Storage.Backend, err)
		return err
	}
	defer kv.Close()

	storageErr := checkStorage(ctx, out, kv, cfg.Storage.Backend, cfg.Storage.Key)

	remote := repository.NewRemoteProductRepository(repository.RemoteConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: time.Duration(cfg.Remote.Timeout) * time.Second,
		Limit:   1,
	}, nil, logger)
	remoteErr := checkRemote(ctx, out, remote, cfg.Remote.BaseURL)

	return errors.Join(storageErr, remoteErr)
}

// checkStorage reads the added-products key and reports how many records it holds.
func checkStorage(ctx context.Context, w io.Writer, kv storage.KV, backend, key string) error {
	data, err := kv.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintf(w, "storage (%s): ok, key %q not written yet\n", backend, key)
		return nil
	case err != nil:
		fmt.Fprintf(w, "storage (%s): FAILED: %v\n", backend, err)
		return err
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		fmt.Fprintf(w, "storage (%s): key %q is not a product list: %v\n", backend, key, err)
		return fmt.Errorf("invalid stored products: %w", err)
	}

	fmt.Fprintf(w, "storage (%s): ok, %d added product(s)\n", backend, len(products))
	return nil
}

func checkRemote(ctx context.Context, w io.Writer, remote repository.RemoteProductSource, baseURL string) error {
	if _, err := remote.Search(ctx, ""); err != nil {
		fmt.Fprintf(w, "catalogue (%s): FAILED: %v\n", baseURL, err)
		return err
	}
	fmt.Fprintf(w, "catalogue (%s): ok\n", baseURL)
	return nil
}
