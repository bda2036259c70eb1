package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepScope scopeFlags

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete completed tasks older than the retention window",
	Long: `Run the staleness sweep for one folder now, without waiting for the
folder to be opened.

Examples:
  nextupctl sweep --user <uuid> --folder <uuid>`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	sweepScope.register(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	userID, folderID, err := sweepScope.parse()
	if err != nil {
		return err
	}

	container, err := newContainer(false)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	deleted, err := container.SweepService.SweepFolder(cmd.Context(), userID, folderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d completed task(s) older than %s\n",
		deleted, container.Config.Sweep.Retention)
	return nil
}
