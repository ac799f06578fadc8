package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/tagscan/internal/pipeline"
	"github.com/ironsheep/tagscan/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve review tools as JSON-RPC over stdin and stdout",
		Long: `Serve the review tools (scan splitting, processing, sheet inspection and
rendering) as JSON-RPC 2.0 over stdin and stdout, one message per line.
Configure it as a stdio tool server in your client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.New(cfg, nil)
			if err != nil {
				return err
			}
			return server.New(p).Run(cmd.Context())
		},
	}
}
