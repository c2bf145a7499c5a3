package main

import (
	"fmt"

	"github.com/matchyard/matchyard/internal/config"
	"github.com/matchyard/matchyard/internal/notify"
	"github.com/matchyard/matchyard/internal/notify/discord"
	"github.com/matchyard/matchyard/internal/notify/slack"
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Post the marketplace digest to Slack or Discord",
		Long:  "Posts a statistics digest to the configured chat channels. Runs on digest.schedule until interrupted, or sends a single digest with --once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, once)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Matchyard config file")
	cmd.Flags().BoolVar(&once, "once", false, "send one digest now and exit")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, once bool) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	cfg, gormDB, logger, err := connectFromConfig(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	notifiers, err := buildNotifiers(cfg.Digest)
	if err != nil {
		return err
	}
	if !once && cfg.Digest.Schedule == "" {
		return fmt.Errorf("digest.schedule is not set; use --once to send a single digest")
	}

	d := notify.NewDispatcher(newStatsService(cfg, gormDB, logger), notifiers, logger)
	if once {
		if err := d.SendOnce(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Digest sent to %d channel(s)\n", len(notifiers))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Posting digest on schedule %q\n", cfg.Digest.Schedule)
	return d.Run(ctx, cfg.Digest.Schedule)
}

// buildNotifiers creates a notifier for every configured chat channel.
func buildNotifiers(cfg config.DigestConfig) ([]notify.Notifier, error) {
	var notifiers []notify.Notifier
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("no digest channel configured: set digest.slack or digest.discord")
	}
	return notifiers, nil
}
