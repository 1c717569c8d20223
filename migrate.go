package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runMigrate(cmd *cobra.Command) error {
	cfg, flush, err := bootstrap()
	if err != nil {
		return err
	}
	defer flush()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	if err := store.migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	zap.S().Infof("Schema for %s storage is up to date", cfg.StorageDriver)
	return nil
}
