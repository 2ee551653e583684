package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/telegram"
)

const (
	SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

	defaultHandlerTimeout = 60 * time.Second
	defaultMaxBodyBytes   = 1 << 20
)

// @Summary Telegram webhook
// @Description Receives Bot API updates. The update is acknowledged at once and handled in the background.
// @Tags telegram
// @Accept json
// @Produce json
// @Param X-Telegram-Bot-Api-Secret-Token header string false "Webhook secret"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /telegram/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	if h.WebhookSecret != "" {
		got := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookSecret)) != 1 {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook secret", nil)
			return
		}
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Unreadable body", err.Error())
		return
	}
	ev, err := telegram.ParseUpdate(body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid update payload", err.Error())
		return
	}

	if ev != nil {
		h.dispatch(ev)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// dispatch handles ev on its own goroutine, detached from the request.
func (h *Handler) dispatch(ev chat.Event) {
	timeout := h.HandlerTimeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				h.Logger.Error().Interface("panic", r).Int("update_id", ev.EventMeta().UpdateID).Msg("update handler panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h.Events.Handle(ctx, ev)
	}()
}
