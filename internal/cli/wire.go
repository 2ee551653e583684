package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/SoeMoeHtet18/telegram-bot/internal/catalog"
	"github.com/SoeMoeHtet18/telegram-bot/internal/config"
	"github.com/SoeMoeHtet18/telegram-bot/internal/db"
	"github.com/SoeMoeHtet18/telegram-bot/internal/drive"
	"github.com/SoeMoeHtet18/telegram-bot/internal/events"
	"github.com/SoeMoeHtet18/telegram-bot/internal/sheets"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

func googleOptions(cfg config.Config, extra ...option.ClientOption) []option.ClientOption {
	opts := append([]option.ClientOption{}, extra...)
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	return opts
}

// openObjectStore connects the configured backend. SQL backends are migrated
// on open. The returned func releases the connection.
func openObjectStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.ObjectStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return store, store.Close, nil
	case config.StoreSQLite:
		store, err := db.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("sqlite migrate: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoreDrive:
		store, err := drive.New(ctx, cfg.DriveRootFolderID, googleOptions(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case config.StoreMemory, "":
		logger.Warn().Msg("using in-memory ticket store, tickets are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openCatalog(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*catalog.Source, error) {
	logger = logger.With().Str("component", "catalog").Logger()
	switch cfg.CatalogDriver {
	case config.CatalogCSV:
		return &catalog.Source{
			Rows:           catalog.CSVSource{Client: &http.Client{Timeout: cfg.RequestTimeout}},
			SourceID:       cfg.CatalogCSVURL,
			ImagesSourceID: cfg.CatalogImagesCSVURL,
			Logger:         logger,
		}, nil
	case config.CatalogSheets, "":
		rows, err := sheets.New(ctx, googleOptions(cfg, option.WithScopes(gsheets.SpreadsheetsReadonlyScope))...)
		if err != nil {
			return nil, err
		}
		return &catalog.Source{
			Rows:        rows,
			SourceID:    cfg.CatalogSheetID,
			ItemsRange:  cfg.CatalogRange,
			ImagesRange: cfg.CatalogImagesRange,
			Logger:      logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
}

func openEvents(cfg config.Config, logger zerolog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, nil
	}
	pub, err := events.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger.With().Str("component", "events").Logger())
	if err != nil {
		return nil, fmt.Errorf("amqp: %w", err)
	}
	return pub, nil
}
