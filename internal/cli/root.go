package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SoeMoeHtet18/telegram-bot/internal/config"
)

const version = "0.1.0"

func NewRoot(logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "telegram-bot",
		Short:         "Support ticket and product catalog Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newMigrateCommand(logger))
	root.AddCommand(newWebhookCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}

// loadConfig reads the configuration and applies LOG_LEVEL to logger.
func loadConfig(logger zerolog.Logger) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, logger, fmt.Errorf("config: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(level)
	}
	return cfg, logger, nil
}
