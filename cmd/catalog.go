package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"card-catalog/feature/catalog"
	"card-catalog/feature/catalog/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalogCmd groups the replica maintenance subcommands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and mutate the local catalog replica",
}

var catalogStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the replica's current version pointer and hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		view, err := service.State(nil)
		if err != nil {
			return err
		}
		return printJSON(view)
	},
}

var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute the content hash and report drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		view, err := service.VerifyState(nil)
		if err != nil {
			return err
		}
		return printJSON(view)
	},
}

var catalogApplySnapshotCmd = &cobra.Command{
	Use:   "apply-snapshot <payload.json>",
	Short: "Apply a full snapshot payload from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		var input models.SnapshotInput
		if err := readJSONFile(args[0], &input); err != nil {
			return err
		}
		result, err := service.ApplySnapshot(input)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var catalogApplyPatchCmd = &cobra.Command{
	Use:   "apply-patch <payload.json>",
	Short: "Apply an incremental patch payload from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		var input models.PatchInput
		if err := readJSONFile(args[0], &input); err != nil {
			return err
		}
		result, err := service.ApplyPatch(input)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the replica (destroys all catalog data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		view, err := service.ResetForTest(nil)
		if err != nil {
			return err
		}
		return printJSON(view)
	},
}

var catalogOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Reclaim storage after heavy patch churn (SQLite only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, logg, err := catalogService()
		if err != nil {
			return err
		}
		defer logg.Sync()
		return service.Optimize()
	},
}

func catalogService() (*catalog.Service, *zap.Logger, error) {
	_, logg, db, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewService(db, logg, nil), logg, nil
}

func readJSONFile(path string, out any) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func printJSON(value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func init() {
	catalogCmd.AddCommand(catalogStateCmd)
	catalogCmd.AddCommand(catalogVerifyCmd)
	catalogCmd.AddCommand(catalogApplySnapshotCmd)
	catalogCmd.AddCommand(catalogApplyPatchCmd)
	catalogCmd.AddCommand(catalogResetCmd)
	catalogCmd.AddCommand(catalogOptimizeCmd)
	RootCmd.AddCommand(catalogCmd)
}
