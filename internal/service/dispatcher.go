package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

// Dispatcher routes decoded events to the engines. Non-operator messages
// become tickets; operator messages go to reply routing; callbacks go by
// action kind.
type Dispatcher struct {
	Ingestion *Ingestion
	Replies   *Replies
	Browsing  *Browsing
	Transport chat.Transport
	Logger    zerolog.Logger
}

func (d *Dispatcher) Handle(ctx context.Context, ev chat.Event) {
	if ev == nil {
		return
	}
	meta := ev.EventMeta()
	log := d.Logger.With().
		Int("update_id", meta.UpdateID).
		Int64("chat_id", meta.ChatID).
		Int64("user_id", meta.From.ID).
		Logger()
	ctx = log.WithContext(ctx)

	var err error
	switch e := ev.(type) {
	case *chat.Command:
		err = d.handleCommand(ctx, e)
	case *chat.Message:
		err = d.handleMessage(ctx, e)
	case *chat.Callback:
		err = d.handleCallback(ctx, e)
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrUnauthorized):
		log.Debug().Msg("operator action from non-operator dropped")
	case errors.Is(err, ErrSessionMiss), errors.Is(err, ErrNotFound):
		log.Debug().Err(err).Msg("event handled")
	default:
		log.Warn().Err(err).Msg("event handling failed")
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, m *chat.Message) error {
	if d.Replies.IsOperator(m.From.ID) {
		return d.Replies.Forward(ctx, m)
	}
	_, err := d.Ingestion.Ingest(ctx, InboundFromMessage(m))
	return err
}

func (d *Dispatcher) handleCommand(ctx context.Context, c *chat.Command) error {
	a := ActorOf(c)
	operator := d.Replies.IsOperator(c.From.ID)

	switch c.Name {
	case "list":
		return d.Replies.ListTickets(ctx, a)
	case "reply":
		return d.Replies.BeginReply(ctx, a, c.Args)
	case "cancel":
		return d.Replies.Cancel(ctx, a)
	case "start":
		if operator {
			return d.Transport.SendText(ctx, a.ChatID, msgOpHelp, nil)
		}
		return d.Transport.SendText(ctx, a.ChatID, msgWelcome, welcomeKeyboard())
	case "help":
		if operator {
			return d.Transport.SendText(ctx, a.ChatID, msgOpHelp, nil)
		}
		return d.Transport.SendText(ctx, a.ChatID, msgHelp, nil)
	case "catalog":
		return d.Browsing.Browse(ctx, a)
	}

	if operator {
		return d.Transport.SendText(ctx, a.ChatID, msgOpHelp, nil)
	}
	// Unknown commands from customers are support requests like any text.
	text := strings.TrimSpace("/" + c.Name + " " + c.Args)
	_, err := d.Ingestion.Ingest(ctx, Inbound{User: c.From, ChatID: c.ChatID, Text: text, At: c.At})
	return err
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *chat.Callback) error {
	defer func() {
		if err := d.Transport.AnswerCallback(ctx, cb.CallbackID, ""); err != nil {
			log := loggerFrom(ctx, d.Logger)
			log.Warn().Err(err).Msg("answer callback failed")
		}
	}()

	a := ActorOf(cb)
	switch cb.Action.Kind {
	case chat.ActionBrowse:
		return d.Browsing.Browse(ctx, a)
	case chat.ActionNextPage:
		return d.Browsing.NextPage(ctx, a)
	case chat.ActionPrevPage:
		return d.Browsing.PrevPage(ctx, a)
	case chat.ActionSelect:
		return d.Browsing.Select(ctx, a, cb.Action.Arg)
	case chat.ActionBuy:
		return d.purchase(ctx, a, cb)
	case chat.ActionView:
		return d.Replies.ViewTicket(ctx, a, cb.Action.Arg)
	case chat.ActionReply:
		return d.Replies.BeginReply(ctx, a, cb.Action.Arg)
	case chat.ActionCancel:
		return d.Replies.Cancel(ctx, a)
	case chat.ActionContact:
		return d.Transport.SendText(ctx, a.ChatID, msgContact, nil)
	default:
		log := loggerFrom(ctx, d.Logger)
		log.Debug().Str("data", cb.Action.Raw).Msg("unknown callback")
		return nil
	}
}

// purchase files a purchase ticket for an item in the user's snapshot.
func (d *Dispatcher) purchase(ctx context.Context, a Actor, cb *chat.Callback) error {
	item, ok := d.Browsing.Lookup(a.User.ID, cb.Action.Arg)
	if !ok {
		return nil
	}
	_, err := d.Ingestion.Ingest(ctx, Inbound{
		User:     a.User,
		ChatID:   a.ChatID,
		Text:     purchaseText(item),
		Category: models.CategoryPurchase,
	})
	return err
}
