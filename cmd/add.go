package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a new task",
	Long: `Adds a task to the top of the list.

Title can be provided as a positional argument or via --title flag.
Notes can be provided via --notes or --description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addCmd.Flags().String("notes", "", "task notes (markdown)")
	addCmd.Flags().SetNormalizeFunc(normalizeNotesFlag)
	rootCmd.AddCommand(addCmd)
}

// normalizeNotesFlag accepts --description and --body for --notes.
func normalizeNotesFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "description", "body":
		name = "notes"
	}
	return pflag.NormalizedName(name)
}

func runAdd(cmd *cobra.Command, args []string) error {
	title, err := resolveAddTitle(cmd, args)
	if err != nil {
		return err
	}
	notes, _ := cmd.Flags().GetString("notes")

	s, err := openSession(exclusive)
	if err != nil {
		return err
	}
	defer s.Close()

	t, ok := s.store.Add(title, notes)
	if !ok {
		return task.ValidateTitle(title)
	}
	s.warnUnsaved(os.Stderr)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "Added task %s: %s", task.ShortID(t.ID), t.Title)
	return nil
}

// resolveAddTitle returns the task title from either the positional arg or --title flag.
func resolveAddTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.InvalidInput,
			"title is required: provide it as an argument or with --title")
	}
}
