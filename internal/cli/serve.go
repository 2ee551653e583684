package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SoeMoeHtet18/telegram-bot/internal/config"
	httpapi "github.com/SoeMoeHtet18/telegram-bot/internal/http"
	"github.com/SoeMoeHtet18/telegram-bot/internal/service"
	"github.com/SoeMoeHtet18/telegram-bot/internal/session"
	"github.com/SoeMoeHtet18/telegram-bot/internal/telegram"
	"github.com/SoeMoeHtet18/telegram-bot/internal/tickets"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(logger)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg, logger)
		},
	}
}

func newTelegram(cfg config.Config) (*telegram.Client, error) {
	return telegram.New(telegram.Options{
		Token:        cfg.TelegramToken,
		APIEndpoint:  cfg.TelegramAPIEndpoint,
		FileEndpoint: cfg.TelegramFileEndpoint,
		HTTPClient:   &http.Client{Timeout: cfg.RequestTimeout},
	})
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	operatorIDs, err := cfg.Operators()
	if err != nil {
		return err
	}

	objects, closeStore, err := openObjectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	ticketStore := tickets.New(objects, logger.With().Str("component", "tickets").Logger())

	source, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry, err := session.NewRegistry(ctx, session.Options{
		PendingTTL:    cfg.PendingReplyTTL,
		SweepSchedule: cfg.SessionSweepSchedule,
		BrowsingTTL:   cfg.BrowsingSessionTTL,
	}, logger.With().Str("component", "sessions").Logger())
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	defer registry.Close()

	publisher, err := openEvents(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	bot, err := newTelegram(cfg)
	if err != nil {
		return err
	}
	bot.MaxDownloadBytes = cfg.MaxAttachmentMB << 20
	logger.Info().Str("bot", bot.Username()).Int("operators", len(operatorIDs)).Msg("telegram connected")

	if cfg.WebhookURL != "" {
		if err := bot.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		logger.Info().Str("url", cfg.WebhookURL).Msg("webhook registered")
	}

	operators := service.NewOperators(operatorIDs...)
	engineLog := logger.With().Str("component", "bot").Logger()
	dispatcher := &service.Dispatcher{
		Ingestion: &service.Ingestion{
			Tickets:   ticketStore,
			Transport: bot,
			Operators: operators,
			Events:    publisher,
			Logger:    engineLog,
		},
		Replies: &service.Replies{
			Tickets:         ticketStore,
			Transport:       bot,
			Sessions:        registry.Pending,
			Operators:       operators,
			Events:          publisher,
			Logger:          engineLog,
			RetainOnFailure: cfg.ReplyRetainOnFailure,
			ListLimit:       cfg.ListLimit,
		},
		Browsing: &service.Browsing{
			Catalog:   source,
			Transport: bot,
			Sessions:  registry.Browsing,
			PageSize:  cfg.CatalogPageSize,
			Logger:    engineLog,
		},
		Transport: bot,
		Logger:    engineLog,
	}

	router, handler := httpapi.Router(cfg, ticketStore, dispatcher, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if err := handler.Wait(ctxShutdown); err != nil {
		logger.Warn().Err(err).Msg("in-flight updates abandoned")
	}
	logger.Info().Msg("server stopped")
	return nil
}
