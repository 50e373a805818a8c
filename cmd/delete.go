package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Removes a task from the list. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	refs, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if len(refs) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	if len(refs) > 1 {
		s, err := openSession(exclusive)
		if err != nil {
			return err
		}
		defer s.Close()
		defer s.warnUnsaved(os.Stderr)
		return runBatch(refs, func(ref string) error {
			_, err := executeDelete(s, ref)
			return err
		})
	}

	// The prompt runs before the list lock is taken.
	var t task.Task
	if err := peek(func(s *session) (err error) {
		t, err = task.FindByPrefix(s.store.Tasks(), refs[0])
		return err
	}); err != nil {
		return err
	}
	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete task %s %q?", task.ShortID(t.ID), t.Title))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	s, err := openSession(exclusive)
	if err != nil {
		return err
	}
	defer s.Close()
	defer s.warnUnsaved(os.Stderr)

	if !s.store.Delete(t.ID) {
		return task.NotFound(refs[0])
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status": "deleted",
			"id":     t.ID,
			"title":  t.Title,
		})
	}
	output.Messagef(os.Stdout, "Deleted task %s: %s", task.ShortID(t.ID), t.Title)
	return nil
}

func executeDelete(s *session, ref string) (task.Task, error) {
	t, err := task.FindByPrefix(s.store.Tasks(), ref)
	if err != nil {
		return task.Task{}, err
	}
	s.store.Delete(t.ID)
	return t, nil
}
