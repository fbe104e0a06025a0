package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand(services Services) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP liveness and readiness probes until interrupted",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := services.ProbeServer(ctx)
			if err != nil {
				return err
			}
			return server.Run(ctx)
		},
	}
}

func newMigrateCommand(services Services) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrator, err := services.Migrator(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status {
				version, err := migrator.GetCurrentVersion(cmd.Context())
				if err != nil {
					return err
				}
				if version == "" {
					version = "none"
				}
				fmt.Fprintf(out, "Schema version: %s\n", version)
				return nil
			}

			previous, err := migrator.MigrateAll(cmd.Context())
			if err != nil {
				return err
			}
			current, err := migrator.GetCurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			if previous == current {
				fmt.Fprintf(out, "Schema already at version %s\n", current)
				return nil
			}
			if previous == "" {
				previous = "none"
			}
			fmt.Fprintf(out, "Schema migrated from %s to %s\n", previous, current)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "only print the applied schema version")
	return cmd
}
