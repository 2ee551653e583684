package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SoeMoeHtet18/telegram-bot/internal/cli"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.With().Str("service", "telegram-bot").Logger()

	if err := cli.NewRoot(logger).Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
