package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

type ticketsQuery struct {
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

type TicketView struct {
	ID string `json:"id"`
	models.Ticket
}

type TicketDetails struct {
	Ticket  TicketView     `json:"ticket"`
	Replies []models.Reply `json:"replies"`
}

// @Summary List tickets
// @Description Most recent tickets, newest first
// @Tags tickets
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Param limit query int false "Max tickets (1-200)" default(50)
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	var q ticketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	list, err := h.Tickets.ListTickets(c.Request.Context(), q.Limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list tickets", err.Error())
		return
	}
	items := make([]TicketView, 0, len(list))
	for _, t := range list {
		items = append(items, TicketView{ID: t.ID, Ticket: t})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": q.Limit})
}

// @Summary Ticket details
// @Description A ticket with the replies recorded for it
// @Tags tickets
// @Produce json
// @Param X-Admin-Key header string true "Admin key"
// @Param id path string true "Ticket handle"
// @Success 200 {object} TicketDetails
// @Failure 404 {object} map[string]any
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketDetails(c *gin.Context) {
	id := c.Param("id")
	t, err := h.Tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to get ticket", err.Error())
		return
	}
	replies, err := h.Tickets.ListReplies(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to list replies", err.Error())
		return
	}
	if replies == nil {
		replies = []models.Reply{}
	}
	c.JSON(http.StatusOK, TicketDetails{Ticket: TicketView{ID: id, Ticket: t}, Replies: replies})
}
