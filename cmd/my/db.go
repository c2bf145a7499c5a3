package main

import (
	"fmt"
	"time"

	"github.com/matchyard/matchyard/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the marketplace tables",
		Long:  "Migrates the resources and messages tables. Hosted databases usually own their schema; use this for local and test databases.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Matchyard config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, _, err := connectFromConfig(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)
	fmt.Fprintf(out, "Connected to %s database\n", cfg.Database.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample marketplace",
		Long:  "Inserts five sample listings and five interests. Existing sample rows are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Matchyard config file")
	return cmd
}

func runDBSeed(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	_, gormDB, logger, err := connectFromConfig(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	n, err := db.SeedSample(gormDB, time.Now())
	if err != nil {
		return fmt.Errorf("seed (run `my db init` first?): %w", err)
	}
	logger.Debug().Int64("rows", n).Msg("sample data seeded")

	if n == 0 {
		fmt.Fprintln(out, "Sample data already present")
		return nil
	}
	fmt.Fprintf(out, "Inserted %d sample rows\n", n)
	return nil
}
