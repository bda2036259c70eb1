package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nextup-api/domain/services"
)

var prioritizeScope scopeFlags

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Reorder a folder's incomplete tasks",
	Long: `Run prioritization for one folder and print the new order.

All tasks with a deadline are sorted locally by deadline; otherwise the
folder is ranked by Gemini (GEMINI_API_KEY must be set).`,
	Args: cobra.NoArgs,
	RunE: runPrioritize,
}

func init() {
	prioritizeScope.register(prioritizeCmd)
}

func runPrioritize(cmd *cobra.Command, args []string) error {
	userID, folderID, err := prioritizeScope.parse()
	if err != nil {
		return err
	}

	container, err := newContainer(false)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	result, err := container.PrioritizationService.Prioritize(cmd.Context(), userID, folderID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Status == services.StatusNothingToPrioritize {
		fmt.Fprintln(out, "nothing to prioritize")
		return nil
	}

	fmt.Fprintf(out, "mode=%s updated=%d\n", result.Mode, result.Updated)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPRIORITY\tMINUTES\tDEADLINE\tTITLE")
	for i, pt := range result.Tasks {
		minutes := "-"
		if pt.EstimatedMinutes != nil {
			minutes = fmt.Sprintf("%.0f", *pt.EstimatedMinutes)
		}
		deadline := "-"
		if pt.Task.Deadline != nil {
			deadline = pt.Task.Deadline.Format("2006-01-02")
		}
		priority := string(pt.Priority)
		if priority == "" {
			priority = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, priority, minutes, deadline, pt.Task.Title)
	}
	return w.Flush()
}
