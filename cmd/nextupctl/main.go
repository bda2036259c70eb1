package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nextup-api/pkg/config"
	"nextup-api/pkg/di"
)

var Version = "dev"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:           "nextupctl",
		Short:         "NextUp operator tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(prioritizeCmd)
	rootCmd.AddCommand(deeplinkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newContainer log ไป stdout เท่านั้น (ไม่เขียนไฟล์ของ API server)
func newContainer(autoMigrate bool) (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Log.Output = "stdout"
	cfg.Log.Format = "text"
	cfg.Log.Level = "warn"
	if verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Database.AutoMigrate = autoMigrate

	container := di.NewContainer()
	container.Config = cfg
	if err := container.InitializeForCLI(); err != nil {
		return nil, err
	}
	return container, nil
}

// scopeFlags --user และ --folder ของคำสั่งที่ทำงานกับ folder เดียว
type scopeFlags struct {
	user   string
	folder string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "", "owner user id (required)")
	cmd.Flags().StringVar(&f.folder, "folder", "", "folder id (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("folder")
}

func (f *scopeFlags) parse() (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(f.user)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --user: %w", err)
	}
	folderID, err := uuid.Parse(f.folder)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid --folder: %w", err)
	}
	return userID, folderID, nil
}
