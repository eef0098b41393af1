package cmd

import (
	"encoding/json"
	"fmt"

	"card-catalog/feature/sources"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full source sync cycle",
	Long: `Pulls the tracker market prices, the vendor buylist and the bulk card
metadata, merges everything under one sync version and advances the replica's
version pointer. Feed failures are reported in the result without aborting
the cycle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		orchestrator := sources.NewOrchestrator(db, logg, &cfg.Sources)
		result, err := orchestrator.SyncAll(cmd.Context())
		if err != nil {
			logg.Error("Full source sync failed", zap.Error(err))
			return err
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
}
