package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
	"github.com/twiced-technology-gmbh/tasklist/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks, newest first, with optional filtering and search.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringP("filter", "f", "all", "completion filter (all, active, completed)")
	listCmd.Flags().StringP("search", "s", "", "search title and notes (case-insensitive)")
	listCmd.Flags().String("sort", view.SortNone, "display order ("+strings.Join(view.SortFields(), ", ")+"); the stored list keeps its order")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	rootCmd.AddCommand(listCmd)
}

// listResult is the JSON shape of list output.
type listResult struct {
	Tasks []task.Task `json:"tasks"`
	Stats view.Stats  `json:"stats"`
}

func runList(cmd *cobra.Command, _ []string) error {
	filterFlag, _ := cmd.Flags().GetString("filter")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")

	filter, err := view.ParseFilter(filterFlag)
	if err != nil {
		return err
	}
	if err := view.ValidateSort(sortBy); err != nil {
		return err
	}

	s, err := openSession(readOnly)
	if err != nil {
		return err
	}
	defer s.Close()

	all := s.store.Tasks()
	tasks := view.Project(all, view.NewState().WithFilter(filter).WithSearch(search))
	tasks = view.SortTasks(tasks, sortBy, reverse)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	stats := view.Summarize(all)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, listResult{Tasks: tasks, Stats: stats})
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks)
		output.StatsCompact(os.Stdout, stats)
	default:
		output.TaskTable(os.Stdout, tasks, search)
		output.StatsCompact(os.Stdout, stats)
	}
	return nil
}
