package cmd

import (
	"fmt"
	"os"

	"card-catalog/core/config"
	"card-catalog/core/database"
	"card-catalog/core/logger"
	"card-catalog/feature/catalog/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "card-catalog",
	Short: "Card Catalog Replica Service",
	Long: `Card Catalog maintains a versioned local replica of a card price catalog.
It applies snapshots and patches from a sync service, pulls vendor price
feeds directly, and serves the replica state over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the catalog
// database. Shared by every subcommand that touches the replica.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return cfg, logg, db, nil
}
