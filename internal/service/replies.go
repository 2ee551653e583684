package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/events"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/session"
)

const (
	supportLabel     = "Support"
	defaultListLimit = 10
)

// Replies routes operator messages back to the customer who opened a ticket.
type Replies struct {
	Tickets   TicketStore
	Transport chat.Transport
	Sessions  session.PendingReplies
	Operators Operators
	Events    events.Publisher
	Logger    zerolog.Logger
	Now       func() time.Time

	// RetainOnFailure keeps the pending target after a failed forward so the
	// operator can resend.
	RetainOnFailure bool
	ListLimit       int
}

func (r *Replies) IsOperator(userID int64) bool {
	return r.Operators.Contains(userID)
}

func (r *Replies) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Replies) say(ctx context.Context, log zerolog.Logger, chatID int64, text string, kb chat.Keyboard) {
	if err := r.Transport.SendText(ctx, chatID, text, kb); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("operator message failed")
	}
}

func (r *Replies) BeginReply(ctx context.Context, op Actor, handle string) error {
	if !r.IsOperator(op.User.ID) {
		return ErrUnauthorized
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		r.say(ctx, loggerFrom(ctx, r.Logger), op.ChatID, "Usage: /reply <ticket>", nil)
		return nil
	}
	r.Sessions.Set(op.User.ID, handle)
	r.say(ctx, loggerFrom(ctx, r.Logger), op.ChatID,
		fmt.Sprintf("Replying to ticket %s. Send your message now, or /cancel.", handle), cancelKeyboard())
	return nil
}

func (r *Replies) Cancel(ctx context.Context, op Actor) error {
	if !r.IsOperator(op.User.ID) {
		return ErrUnauthorized
	}
	r.Sessions.Clear(op.User.ID)
	r.say(ctx, loggerFrom(ctx, r.Logger), op.ChatID, "Reply cancelled.", nil)
	return nil
}

func (r *Replies) ListTickets(ctx context.Context, op Actor) error {
	if !r.IsOperator(op.User.ID) {
		return ErrUnauthorized
	}
	log := loggerFrom(ctx, r.Logger)
	limit := r.ListLimit
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := r.Tickets.ListTickets(ctx, limit)
	if err != nil {
		err = storeErr("list tickets", err)
		log.Error().Err(err).Msg("list tickets failed")
		r.say(ctx, log, op.ChatID, "Could not load tickets: store unavailable.", nil)
		return err
	}
	if len(list) == 0 {
		r.say(ctx, log, op.ChatID, msgNoTickets, nil)
		return nil
	}
	for _, t := range list {
		r.say(ctx, log, op.ChatID, renderTicketSummary(t), ticketKeyboard(t))
	}
	return nil
}

func (r *Replies) ViewTicket(ctx context.Context, op Actor, handle string) error {
	if !r.IsOperator(op.User.ID) {
		return ErrUnauthorized
	}
	log := loggerFrom(ctx, r.Logger)
	t, err := r.Tickets.GetTicket(ctx, handle)
	if err != nil {
		err = storeErr("view ticket", err)
		if errors.Is(err, ErrNotFound) {
			r.say(ctx, log, op.ChatID, fmt.Sprintf("Ticket %s not found.", handle), nil)
			return err
		}
		log.Error().Err(err).Str("ticket_id", handle).Msg("view ticket failed")
		r.say(ctx, log, op.ChatID, fmt.Sprintf("Could not load ticket %s: store unavailable.", handle), nil)
		return err
	}
	replies, err := r.Tickets.ListReplies(ctx, handle)
	if err != nil {
		log.Warn().Err(err).Str("ticket_id", handle).Msg("list replies failed")
		replies = nil
	}
	r.say(ctx, log, op.ChatID, renderTicketDetails(t, replies), replyKeyboard(t.ID))
	return nil
}

// Forward delivers an operator message to the customer of the pending ticket
// and records it as a Reply.
func (r *Replies) Forward(ctx context.Context, msg *chat.Message) error {
	op := ActorOf(msg)
	if !r.IsOperator(op.User.ID) {
		return ErrUnauthorized
	}
	log := loggerFrom(ctx, r.Logger)

	handle, ok := r.Sessions.Get(op.User.ID)
	if !ok {
		r.say(ctx, log, op.ChatID, msgNoActiveReply, nil)
		return ErrSessionMiss
	}
	log = log.With().Str("ticket_id", handle).Logger()

	t, err := r.Tickets.GetTicket(ctx, handle)
	if err != nil {
		err = storeErr("resolve ticket", err)
		r.clear(op.User.ID, handle)
		if errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Msg("reply target not found")
			r.say(ctx, log, op.ChatID, fmt.Sprintf("Ticket %s not found. Reply cancelled.", handle), nil)
		} else {
			log.Error().Err(err).Msg("reply target unreadable")
			r.say(ctx, log, op.ChatID, fmt.Sprintf("Could not load ticket %s. Reply cancelled.", handle), nil)
		}
		return err
	}
	if t.ChatID == 0 {
		r.clear(op.User.ID, handle)
		r.say(ctx, log, op.ChatID, fmt.Sprintf("Ticket %s has no chat to reply to. Reply cancelled.", handle), nil)
		return fmt.Errorf("ticket %s: %w: missing chat id", handle, ErrNotFound)
	}

	delivered, sendErr := r.deliver(ctx, t.ChatID, msg)
	if sendErr != nil && delivered == 0 {
		err := transportErr("forward reply", sendErr)
		log.Error().Err(err).Int64("customer_chat_id", t.ChatID).Msg("reply forward failed")
		if r.RetainOnFailure {
			r.say(ctx, log, op.ChatID, fmt.Sprintf("Could not deliver reply to ticket %s. Send again to retry, or /cancel.", handle), nil)
		} else {
			r.clear(op.User.ID, handle)
			r.say(ctx, log, op.ChatID, fmt.Sprintf("Could not deliver reply to ticket %s. Reply cancelled.", handle), nil)
		}
		return err
	}

	// Part of a multi-file message reached the customer. That part is
	// recorded and the target cleared, since a resend would duplicate it.
	sent := msg
	if sendErr != nil {
		sendErr = transportErr("forward reply", sendErr)
		log.Error().Err(sendErr).Int("delivered", delivered).Int("files", len(msg.Files)).Msg("reply partly delivered")
		partial := *msg
		partial.Files = msg.Files[:delivered]
		sent = &partial
	}

	reply := models.Reply{
		TicketID:  handle,
		AdminID:   op.User.ID,
		AdminName: displayName(op.User),
		SentAt:    r.now().UTC(),
		Content:   ReplyContent(sent),
	}
	r.clear(op.User.ID, handle)
	if _, err := r.Tickets.CreateReply(ctx, reply); err != nil {
		err = storeErr("record reply", err)
		log.Error().Err(err).Msg("reply delivered but not recorded")
		r.say(ctx, log, op.ChatID, fmt.Sprintf("Reply delivered to ticket %s but could not be recorded.", handle), nil)
		return errors.Join(sendErr, err)
	}

	if sendErr != nil {
		r.say(ctx, log, op.ChatID, fmt.Sprintf("Reply to ticket %s was partly delivered (%d of %d files). The delivered part was recorded.", handle, delivered, len(msg.Files)), nil)
	} else {
		log.Info().Int64("operator_id", op.User.ID).Msg("reply sent")
		r.say(ctx, log, op.ChatID, fmt.Sprintf("Reply sent to ticket %s.", handle), nil)
	}

	if r.Events != nil {
		err := r.Events.Publish(ctx, events.TypeReplySent, events.ReplySent{TicketID: handle, AdminID: op.User.ID, SentAt: reply.SentAt})
		if err != nil {
			log.Warn().Err(err).Msg("reply event publish failed")
		}
	}
	return sendErr
}

// clear drops the pending target only if it still points at handle, so a
// target set by a newer /reply is kept.
func (r *Replies) clear(operatorID int64, handle string) {
	if current, ok := r.Sessions.Get(operatorID); ok && current == handle {
		r.Sessions.Clear(operatorID)
	}
}

// deliver sends the operator message to the customer and reports how many
// files went out. Only the first file carries the caption.
func (r *Replies) deliver(ctx context.Context, chatID int64, msg *chat.Message) (int, error) {
	label := supportLabel
	if text := strings.TrimSpace(msg.Text); text != "" {
		label = supportLabel + ": " + text
	}
	if len(msg.Files) == 0 {
		return 0, r.Transport.SendText(ctx, chatID, label, nil)
	}
	for i, f := range msg.Files {
		caption := ""
		if i == 0 {
			caption = label
		}
		media := chat.Media{FileID: f.FileID}
		var err error
		switch f.Kind {
		case chat.FilePhoto:
			err = r.Transport.SendPhoto(ctx, chatID, media, caption, nil)
		case chat.FileVoice:
			err = r.Transport.SendVoice(ctx, chatID, media, caption, nil)
		default:
			err = r.Transport.SendDocument(ctx, chatID, media, caption, nil)
		}
		if err != nil {
			return i, err
		}
	}
	return len(msg.Files), nil
}

// ReplyContent is what gets recorded for an operator message: the text, or a
// marker per attachment followed by the caption.
func ReplyContent(msg *chat.Message) string {
	text := strings.TrimSpace(msg.Text)
	if len(msg.Files) == 0 {
		return text
	}
	parts := make([]string, 0, len(msg.Files)+1)
	for _, f := range msg.Files {
		parts = append(parts, "["+f.Kind+"]")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}
