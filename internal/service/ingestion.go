package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/events"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/tickets"
)

const notifyConcurrency = 8

// Inbound is a customer event ready to become a ticket.
type Inbound struct {
	User     chat.User
	ChatID   int64
	Text     string
	Files    []chat.FileRef
	Category string
	At       time.Time
}

func InboundFromMessage(m *chat.Message) Inbound {
	return Inbound{User: m.From, ChatID: m.ChatID, Text: m.Text, Files: m.Files, At: m.At}
}

// Ingestion turns customer events into tickets and alerts operators.
type Ingestion struct {
	Tickets   TicketStore
	Transport chat.Transport
	Operators Operators
	Events    events.Publisher
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Classify derives the ticket category from the attachment kinds.
func Classify(files []chat.FileRef) string {
	if len(files) == 0 {
		return models.CategoryText
	}
	kind := files[0].Kind
	for _, f := range files[1:] {
		if f.Kind != kind {
			return models.CategoryMixed
		}
	}
	switch kind {
	case chat.FilePhoto:
		return models.CategoryPhoto
	case chat.FileDocument:
		return models.CategoryDocument
	case chat.FileVoice:
		return models.CategoryVoice
	default:
		return models.CategoryMixed
	}
}

func displayName(u chat.User) string {
	if u.Name == "" && u.Username == "" {
		return ""
	}
	return u.Label()
}

func (e *Ingestion) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Ingest stores attachments and the ticket, confirms to the customer and
// notifies operators. Any attachment failure aborts before a ticket record is
// written; objects already uploaded stay in the store.
func (e *Ingestion) Ingest(ctx context.Context, in Inbound) (models.Ticket, error) {
	log := loggerFrom(ctx, e.Logger)

	created := in.At
	if created.IsZero() {
		created = e.now()
	}
	t := models.Ticket{
		UserID:      in.User.ID,
		UserName:    displayName(in.User),
		ChatID:      in.ChatID,
		Text:        strings.TrimSpace(in.Text),
		CreatedAt:   created.UTC(),
		Category:    in.Category,
		Attachments: []models.Attachment{},
	}
	if t.Category == "" {
		t.Category = Classify(in.Files)
	}
	if t.Text == "" && len(in.Files) == 0 {
		t.Text = models.EmptyBody
	}

	prefix := tickets.Prefix(t)
	for i, f := range in.Files {
		data, err := e.Transport.Download(ctx, f.FileID)
		if err != nil {
			return e.fail(ctx, log, in.ChatID, transportErr("download attachment", err))
		}
		h, err := e.Tickets.UploadAttachment(ctx, prefix, i+1, f.FileName, data, f.MimeType)
		if err != nil {
			return e.fail(ctx, log, in.ChatID, storeErr("upload attachment", err))
		}
		t.Attachments = append(t.Attachments, models.Attachment{Kind: f.Kind, Object: h, MimeType: f.MimeType})
	}

	h, err := e.Tickets.CreateTicket(ctx, t)
	if err != nil {
		return e.fail(ctx, log, in.ChatID, storeErr("create ticket", err))
	}
	t.ID = h.ID
	log.Info().Str("ticket_id", t.ID).Str("category", t.Category).Int("attachments", len(t.Attachments)).Msg("ticket created")

	confirm := msgTicketReceived
	if t.Category == models.CategoryPurchase {
		confirm = msgPurchaseSent
	}
	if err := e.Transport.SendText(ctx, in.ChatID, confirm, nil); err != nil {
		log.Warn().Err(err).Str("ticket_id", t.ID).Msg("ticket confirmation failed")
	}

	e.notifyOperators(ctx, log, t)

	if e.Events != nil {
		err := e.Events.Publish(ctx, events.TypeTicketCreated, events.TicketCreated{
			TicketID:    t.ID,
			UserID:      t.UserID,
			ChatID:      t.ChatID,
			Category:    t.Category,
			Attachments: len(t.Attachments),
			CreatedAt:   t.CreatedAt,
		})
		if err != nil {
			log.Warn().Err(err).Str("ticket_id", t.ID).Msg("ticket event publish failed")
		}
	}
	return t, nil
}

func (e *Ingestion) fail(ctx context.Context, log zerolog.Logger, chatID int64, err error) (models.Ticket, error) {
	log.Error().Err(err).Msg("ticket ingestion failed")
	if sendErr := e.Transport.SendText(ctx, chatID, msgTicketFailed, nil); sendErr != nil {
		log.Warn().Err(sendErr).Msg("apology send failed")
	}
	return models.Ticket{}, err
}

// notifyOperators alerts every operator concurrently. A failed send is
// logged and does not affect the others.
func (e *Ingestion) notifyOperators(ctx context.Context, log zerolog.Logger, t models.Ticket) {
	text := renderNotification(t)
	kb := ticketKeyboard(t)

	var g errgroup.Group
	g.SetLimit(notifyConcurrency)
	for _, id := range e.Operators.IDs() {
		opID := id
		g.Go(func() error {
			if err := e.Transport.SendText(ctx, opID, text, kb); err != nil {
				log.Warn().Err(err).Int64("operator_id", opID).Str("ticket_id", t.ID).Msg("operator notification failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}
