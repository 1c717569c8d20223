package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"parkledger/internal/config"
	"parkledger/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkledger",
		Short:         "Parking facility session ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket feed and gate consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes for the configured store, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd)
		},
	})
	return root
}

// bootstrap loads configuration and installs the global logger.
func bootstrap() (*config.Config, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	flush, err := logger.Init(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	zap.S().Infof("Configuration loaded (env=%s, storage=%s)", cfg.AppEnv, cfg.StorageDriver)
	return cfg, flush, nil
}
