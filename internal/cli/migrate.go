package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SoeMoeHtet18/telegram-bot/internal/config"
	"github.com/SoeMoeHtet18/telegram-bot/internal/tickets"
)

func newMigrateCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the object store schema and ticket folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logger)
			if err != nil {
				return err
			}
			if err := cfg.ValidateStore(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := migrate(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			cmd.Println("migrate: ok")
			return nil
		},
	}
}

// migrate opens the store, which applies the SQL schema, then creates the
// ticket folders so the first ticket does not pay for it.
func migrate(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	objects, closeStore, err := openObjectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	for _, name := range []string{tickets.TicketsFolder, tickets.RepliesFolder, tickets.AttachmentsFolder} {
		if _, err := objects.CreateFolder(ctx, name); err != nil {
			return fmt.Errorf("create folder %s: %w", name, err)
		}
	}
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store migrated")
	return nil
}
