package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

// TicketReader is the read side of the ticket store used by the admin API.
type TicketReader interface {
	Ping(ctx context.Context) error
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	ListTickets(ctx context.Context, limit int) ([]models.Ticket, error)
	ListReplies(ctx context.Context, ticketID string) ([]models.Reply, error)
}

// EventHandler consumes decoded chat events.
type EventHandler interface {
	Handle(ctx context.Context, ev chat.Event)
}

type Handler struct {
	Tickets   TicketReader
	Events    EventHandler
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string

	WebhookSecret  string
	HandlerTimeout time.Duration
	MaxBodyBytes   int64

	inflight sync.WaitGroup
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Tickets.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Ticket store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Wait blocks until every in-flight update has been handled or ctx is done.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
