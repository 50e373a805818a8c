package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/activity"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "Show recent changes",
	Long:    `Displays the activity log of the list, oldest first.`,
	Args:    cobra.NoArgs,
	RunE:    runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 for all)") //nolint:mnd // default page
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := activity.Read(cfg.Dir(), limit)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.HistoryCompact(os.Stdout, entries)
	default:
		output.HistoryTable(os.Stdout, entries)
	}
	return nil
}
