package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/takecopter/backend/cmd/config"
	"github.com/takecopter/backend/pkg/models"
)

func NewStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories in the active project",
	}

	cmd.AddCommand(
		newStoryListCmd(),
		newStoryNewCmd(),
		newStoryRenameCmd(),
		newStoryDeleteCmd(),
		newStoryOpenFolderCmd(),
		newStoryOpenDBCmd(),
	)
	return cmd
}

func newStoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stories, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			resp, err := svc.EnsureProject()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
			for _, story := range resp.Data.Stories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", story.ID, story.Title, story.UpdatedAt)
			}
			return w.Flush()
		},
	}
}

func newStoryNewCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			story, err := svc.CreateStory(models.CreateStoryInput{
				Title:       args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			return printJSON(story)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "story description")
	return cmd
}

func newStoryRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <story-id> <title>",
		Short: "Rename a story (renames its folder too)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			story, err := svc.RenameStory(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(story)
		},
	}
}

func newStoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a story and its folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			if err := svc.DeleteStory(args[0]); err != nil {
				return err
			}
			fmt.Println("Story deleted.")
			return nil
		},
	}
}

func newStoryOpenFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-folder <story-id>",
		Short: "Reveal a story's folder in the file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			return config.InitService().OpenStoryFolder(args[0])
		},
	}
}

func newStoryOpenDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-db <story-id>",
		Short: "Reveal a story's database file in the file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			return config.InitService().OpenStoryDatabase(args[0])
		},
	}
}
