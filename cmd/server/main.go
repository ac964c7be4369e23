package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:   "legalsuite",
		Short: "Legal research and practice management API",
		Long: `legalsuite serves the law-firm API: AI-assisted legal research backed by
Indian Kanoon case law, firm/staff/case management and document storage.

Running it without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./legalsuite.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfgFile)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL tables and MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), cfgFile)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
