package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
		watch      bool
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print marketplace statistics",
		Long:  "Prints platform statistics, category performance and recent activity. Use --watch for auto-refresh.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, configPath, asJSON, watch, interval)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Matchyard config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "auto-refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "refresh interval for --watch")
	return cmd
}

func runStats(cmd *cobra.Command, configPath string, asJSON, watch bool, interval time.Duration) error {
	if watch && asJSON {
		return fmt.Errorf("--watch and --json cannot be combined")
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, gormDB, logger, err := connectFromConfig(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	svc := newStatsService(cfg, gormDB, logger)
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.Overview(ctx))
	}

	color := isTerminal(out)
	for {
		ov := svc.Overview(ctx)

		if watch {
			// Clear screen.
			fmt.Fprint(out, "\033[2J\033[H")
		}

		fmt.Fprint(out, formatOverview(ov, color))

		if !watch {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}
