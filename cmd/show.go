package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long: `Displays full details of a single task including its markdown notes.
ID may be any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	s, err := openSession(readOnly)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := task.FindByPrefix(s.store.Tasks(), args[0])
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, t)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, t)
	default:
		output.TaskDetail(os.Stdout, t)
	}
	return nil
}
