package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func newProvisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the database and tables if they do not exist, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()
			defer srv.Shutdown(context.Background())

			return srv.Initialize(cmd.Context())
		},
	}
}

func newDropTablesCommand() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "drop-tables",
		Short: "Drop the attendance and students tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("refusing to drop tables without --yes")
			}

			srv, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()
			defer srv.Shutdown(context.Background())

			return srv.DB.DropTables(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm dropping every table")
	return cmd
}
