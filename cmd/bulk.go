package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

var clearCompletedCmd = &cobra.Command{
	Use:     "clear-completed",
	Aliases: []string{"clear"},
	Short:   "Remove all completed tasks",
	Args:    cobra.NoArgs,
	RunE:    runClearCompleted,
}

var toggleAllCmd = &cobra.Command{
	Use:   "toggle-all",
	Short: "Complete every task, or reopen all if all are completed",
	Args:  cobra.NoArgs,
	RunE:  runToggleAll,
}

func init() {
	clearCompletedCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCompletedCmd)
	rootCmd.AddCommand(toggleAllCmd)
}

func runClearCompleted(cmd *cobra.Command, _ []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		var pending int
		if err := peek(func(s *session) error {
			pending = view.Summarize(s.store.Tasks()).Completed
			return nil
		}); err != nil {
			return err
		}
		if pending > 0 {
			ok, err := confirm(fmt.Sprintf("Remove %d completed task(s)?", pending))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stderr, "Canceled.")
				return nil
			}
		}
	}

	s, err := openSession(exclusive)
	if err != nil {
		return err
	}
	defer s.Close()

	removed := s.store.ClearCompleted()
	s.warnUnsaved(os.Stderr)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]int{"removed": removed})
	}
	output.Messagef(os.Stdout, "Removed %d completed task(s)", removed)
	return nil
}

func runToggleAll(_ *cobra.Command, _ []string) error {
	s, err := openSession(exclusive)
	if err != nil {
		return err
	}
	defer s.Close()

	completed := s.store.ToggleAll()
	s.warnUnsaved(os.Stderr)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]bool{"completed": completed})
	}
	if completed {
		output.Messagef(os.Stdout, "Marked all completed")
	} else {
		output.Messagef(os.Stdout, "Marked all active")
	}
	return nil
}
