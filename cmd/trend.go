package cmd

import (
	"card-catalog/feature/prices"

	"github.com/spf13/cobra"
)

var trendChannel string

// trendCmd represents the trend command
var trendCmd = &cobra.Command{
	Use:   "trend <printing-id>",
	Short: "Print the price movement for one printing",
	Long: `Derives the short-term price movement for one printing from its two most
recent observations of the chosen channel (tcg-low, tcg-mid, tcg-high,
ck-sell, ck-buylist).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		trend, err := prices.NewTrendCalculator(db).ComputeTrend(args[0], trendChannel)
		if err != nil {
			return err
		}
		return printJSON(trend)
	},
}

func init() {
	trendCmd.Flags().StringVar(&trendChannel, "channel", "tcg-mid", "price channel to derive the trend from")
	RootCmd.AddCommand(trendCmd)
}
