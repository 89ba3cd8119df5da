package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takecopter/backend/pkg/models"
)

// Version is set at build time via ldflags.
var Version = "dev"

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and schema information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("takecopter-backend %s (schema v%d)\n", Version, models.SchemaVersion)
		},
	}
}
