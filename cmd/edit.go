package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var doneCmd = &cobra.Command{
	Use:   "done ID[,ID,...]",
	Short: "Mark tasks completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runPatch(args[0], task.SetCompleted(true), "Completed")
	},
}

var undoCmd = &cobra.Command{
	Use:     "undo ID[,ID,...]",
	Aliases: []string{"reopen"},
	Short:   "Mark tasks active again",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runPatch(args[0], task.SetCompleted(false), "Reopened")
	},
}

func init() {
	addEditFlags(editCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("notes", "", "new notes (replaces existing notes)")
	cmd.Flags().Bool("done", false, "mark completed")
	cmd.Flags().Bool("undone", false, "mark active")
	cmd.Flags().SetNormalizeFunc(normalizeNotesFlag)
}

func runEdit(cmd *cobra.Command, args []string) error {
	patch, err := editPatch(cmd)
	if err != nil {
		return err
	}
	return runPatch(args[0], patch, "Updated")
}

// editPatch builds a patch from the flags that were set.
func editPatch(cmd *cobra.Command) (task.Patch, error) {
	var patch task.Patch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		if err := task.ValidateTitle(v); err != nil {
			return task.Patch{}, err
		}
		patch = patch.Merge(task.SetTitle(v))
	}
	if flags.Changed("notes") {
		v, _ := flags.GetString("notes")
		patch = patch.Merge(task.SetNotes(v))
	}

	done, _ := flags.GetBool("done")
	undone, _ := flags.GetBool("undone")
	if done && undone {
		return task.Patch{}, clierr.New(clierr.InvalidInput, "cannot use --done and --undone together")
	}
	if done {
		patch = patch.Merge(task.SetCompleted(true))
	}
	if undone {
		patch = patch.Merge(task.SetCompleted(false))
	}

	if patch.Empty() {
		return task.Patch{}, clierr.New(clierr.NoChanges, "no changes specified")
	}
	return patch, nil
}

// runPatch applies patch to every referenced task.
func runPatch(arg string, patch task.Patch, verb string) error {
	refs, err := parseIDs(arg)
	if err != nil {
		return err
	}

	s, err := openSession(exclusive)
	if err != nil {
		return err
	}
	defer s.Close()
	defer s.warnUnsaved(os.Stderr)

	if len(refs) > 1 {
		return runBatch(refs, func(ref string) error {
			_, err := executePatch(s, ref, patch)
			return err
		})
	}

	t, err := executePatch(s, refs[0], patch)
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "%s task %s: %s", verb, task.ShortID(t.ID), t.Title)
	return nil
}

// executePatch resolves ref and applies patch.
func executePatch(s *session, ref string, patch task.Patch) (task.Task, error) {
	t, err := task.FindByPrefix(s.store.Tasks(), ref)
	if err != nil {
		return task.Task{}, err
	}
	if !s.store.Update(t.ID, patch) {
		return task.Task{}, task.ValidateTitle("")
	}
	updated, _ := s.store.Get(t.ID)
	return updated, nil
}
