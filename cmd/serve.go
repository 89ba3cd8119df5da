package cmd

import (
	"github.com/spf13/cobra"

	"github.com/takecopter/backend/cmd/config"
	"github.com/takecopter/backend/internal/server"
)

func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local command server for the desktop front end",
		Long: `Serve the takecopter command interface over a loopback HTTP endpoint.

The desktop UI invokes every backend operation through this interface:
POST /rpc/<command> with a JSON body.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitConfig()
			svc := config.InitService()

			if addr == "" {
				addr = config.ListenAddr()
			}
			srv := server.New(svc, config.NewLogger())
			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, loopback only)")
	return cmd
}
