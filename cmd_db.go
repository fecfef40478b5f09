package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/rpupo63/taskmanager/app"
	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
)

// withDatabase loads config, opens the database and closes it when fn returns
func withDatabase(cmd *cobra.Command, fn func(db *app.DatabaseHandle) error) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	app.ConfigureLogging(cfg)

	injector := app.NewContainer(cfg)
	defer shutdown(injector)

	db, err := do.Invoke[*app.DatabaseHandle](injector)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	return fn(db)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *app.DatabaseHandle) error {
				if err := database.Migrate(cmd.Context(), db.GetDB()); err != nil {
					return err
				}
				log.Info().Msg("Migrations applied")
				return nil
			})
		},
	}
}

func schemaReportCmd() *cobra.Command {
	var failOnMismatch bool

	cmd := &cobra.Command{
		Use:   "schema-report",
		Short: "List database columns the models do not declare",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *app.DatabaseHandle) error {
				total, err := database.WriteColumnMismatchReport(os.Stdout, db.GetDB())
				if err != nil {
					return err
				}
				if failOnMismatch && total > 0 {
					return fmt.Errorf("%d unmapped columns", total)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&failOnMismatch, "fail", false, "Exit non-zero when unmapped columns are found")

	return cmd
}

func generateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed query helpers for the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd, func(db *app.DatabaseHandle) error {
				database.GenerateQueries(db.GetDB(), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "./query", "Output directory for generated code")

	return cmd
}
