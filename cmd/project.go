package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takecopter/backend/cmd/config"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show bootstrap state (active root, default root)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			state, err := svc.BootstrapState()
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	}
}

func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a project root and make it active",
		Long: `Create a project root directory (manifest, stories/, exports/) and make
it the active project. With no path the default root under the app data
directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			rootPath := ""
			if len(args) == 1 {
				rootPath = args[0]
			}
			if err := svc.InitializeProjectRoot(rootPath); err != nil {
				return err
			}

			state, err := svc.BootstrapState()
			if err != nil {
				return err
			}
			fmt.Printf("Initialized project root at %s\n", *state.ActiveRootPath)
			return nil
		},
	}
}

func NewOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open an existing project root and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			if err := svc.OpenProjectRoot(args[0]); err != nil {
				return err
			}
			fmt.Printf("Opened project root at %s\n", args[0])
			return nil
		},
	}
}

func NewBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the whole project root into a timestamped backup folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			dir, err := svc.BackupLocalDatabase()
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", dir)
			return nil
		},
	}
}
