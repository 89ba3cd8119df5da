package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/takecopter/backend/cmd/config"
	"github.com/takecopter/backend/pkg/models"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the project or a single story",
	}
	cmd.AddCommand(newExportProjectCmd(), newExportStoryCmd())
	return cmd
}

func newExportProjectCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Export the whole project as a versioned snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			if local {
				dir, err := svc.ExportProjectToLocal()
				if err != nil {
					return err
				}
				fmt.Printf("Export written under %s\n", dir)
				return nil
			}

			payload, err := svc.ExportProject()
			if err != nil {
				return err
			}
			return printJSON(payload)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "write a timestamped file under exports/ instead of stdout")
	return cmd
}

func newExportStoryCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "story <story-id>",
		Short: "Export a single story and its workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			if local {
				dir, err := svc.ExportStoryToLocal(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Export written under %s\n", dir)
				return nil
			}

			payload, err := svc.ExportStory(args[0])
			if err != nil {
				return err
			}
			return printJSON(payload)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "write a timestamped file under exports/ instead of stdout")
	return cmd
}

func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a project or story snapshot into the active project",
	}
	cmd.AddCommand(newImportProjectCmd(), newImportStoryCmd())
	return cmd
}

func newImportProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project <file>",
		Short: "Replace the active project with an exported snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var payload models.ExportedProjectData
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}
			if err := svc.ImportProject(payload); err != nil {
				return err
			}
			fmt.Println("Project imported.")
			return nil
		},
	}
}

func newImportStoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "story <file>",
		Short: "Merge an exported story into the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var payload models.ExportedStoryData
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}
			if err := svc.ImportStory(payload); err != nil {
				return err
			}
			fmt.Println("Story imported.")
			return nil
		},
	}
}
