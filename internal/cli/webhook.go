package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWebhookCommand(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}
	cmd.AddCommand(newWebhookSetCommand(logger))
	cmd.AddCommand(newWebhookDeleteCommand(logger))
	return cmd
}

func newWebhookSetCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "set [url]",
		Short: "Register the webhook URL (defaults to WEBHOOK_URL)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logger)
			if err != nil {
				return err
			}
			url := cfg.WebhookURL
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" {
				return errors.New("webhook url required: pass it or set WEBHOOK_URL")
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}
			bot, err := newTelegram(cfg)
			if err != nil {
				return err
			}
			if err := bot.SetWebhook(cmd.Context(), url, cfg.WebhookSecret); err != nil {
				return fmt.Errorf("set webhook: %w", err)
			}
			logger.Info().Str("url", url).Bool("secret", cfg.WebhookSecret != "").Msg("webhook registered")
			return nil
		},
	}
}

func newWebhookDeleteCommand(logger zerolog.Logger) *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logger)
			if err != nil {
				return err
			}
			if cfg.TelegramToken == "" {
				return errors.New("TELEGRAM_TOKEN is required")
			}
			bot, err := newTelegram(cfg)
			if err != nil {
				return err
			}
			if err := bot.DeleteWebhook(cmd.Context(), dropPending); err != nil {
				return fmt.Errorf("delete webhook: %w", err)
			}
			logger.Info().Bool("drop_pending", dropPending).Msg("webhook deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop updates queued while no webhook was set")
	return cmd
}
