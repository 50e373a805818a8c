package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasklist/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklist/internal/output"
	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// parseIDs splits a comma-separated reference list into deduplicated,
// trimmed references.
func parseIDs(arg string) ([]string, error) {
	parts := strings.Split(arg, ",")
	refs := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, task.ValidateTaskID(arg)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		refs = append(refs, p)
	}
	return refs, nil
}

// runBatch executes fn for each reference and collects results. Returns a
// SilentError with exit code 1 if any operation failed (after outputting
// results).
func runBatch(refs []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(refs))
	anyFailed := false

	for _, ref := range refs {
		err := fn(ref)
		if err == nil {
			results = append(results, output.BatchResult{ID: ref, OK: true})
			continue
		}
		anyFailed = true
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			results = append(results, output.BatchResult{ID: ref, Error: cliErr.Message, Code: cliErr.Code})
		} else {
			results = append(results, output.BatchResult{ID: ref, Error: err.Error()})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(refs))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

// confirm asks a yes/no question on the terminal. Without a terminal the
// caller must pass --yes.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	return readAnswer(os.Stdin, os.Stderr, question), nil
}

func readAnswer(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
