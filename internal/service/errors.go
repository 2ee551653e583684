package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrStore        = errors.New("store failure")
	ErrCatalog      = errors.New("catalog failure")
	ErrSessionMiss  = errors.New("no active session")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not an operator")
)

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}

// storeErr classifies a ticket store failure. A missing object is NotFound,
// anything else is a store failure.
func storeErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

func catalogErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCatalog, err)
}

// loggerFrom prefers the event-scoped logger carried by ctx.
func loggerFrom(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}
