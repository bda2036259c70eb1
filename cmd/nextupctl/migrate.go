package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the Postgres schema",
	Long: `Run the schema migration for users, folders and tasks.

Use this when the API runs with DB_AUTO_MIGRATE=false.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	container, err := newContainer(false)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	if err := container.Migrate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
	return nil
}
