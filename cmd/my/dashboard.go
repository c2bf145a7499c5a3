package main

import (
	"github.com/matchyard/matchyard/internal/dashboard"
	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the read-only web dashboard",
		Long:  "Serves the admin web dashboard and its JSON API. Statistics update live over server-sent events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Matchyard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 8080)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath string, port int) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, gormDB, logger, err := connectFromConfig(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	if port <= 0 {
		port = cfg.Dashboard.Port
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		Stats:  newStatsService(cfg, gormDB, logger),
		Port:   port,
		Out:    cmd.OutOrStdout(),
		Logger: logger,
		Auth: dashboard.AuthOpts{
			Secret:       cfg.Dashboard.JWTSecret,
			RequiredRole: cfg.Dashboard.RequiredRole,
		},
		RefreshInterval: cfg.Dashboard.RefreshInterval,
	})
}
