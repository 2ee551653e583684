package service

import (
	"context"
	"sort"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

// Operators is the fixed allow-list of operator user ids. Operators talk to
// the bot in private chats, so an operator id doubles as their chat id.
type Operators map[int64]struct{}

func NewOperators(ids ...int64) Operators {
	ops := Operators{}
	for _, id := range ids {
		ops[id] = struct{}{}
	}
	return ops
}

func (o Operators) Contains(id int64) bool {
	_, ok := o[id]
	return ok
}

func (o Operators) IDs() []int64 {
	ids := make([]int64, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Actor is who triggered an event and where to answer.
type Actor struct {
	User      chat.User
	ChatID    int64
	MessageID int
}

func ActorOf(ev chat.Event) Actor {
	m := ev.EventMeta()
	return Actor{User: m.From, ChatID: m.ChatID, MessageID: m.MessageID}
}

type TicketStore interface {
	CreateTicket(ctx context.Context, t models.Ticket) (models.ObjectHandle, error)
	UploadAttachment(ctx context.Context, prefix string, n int, name string, data []byte, mimeType string) (models.ObjectHandle, error)
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	ListTickets(ctx context.Context, limit int) ([]models.Ticket, error)
	CreateReply(ctx context.Context, r models.Reply) (models.ObjectHandle, error)
	ListReplies(ctx context.Context, ticketID string) ([]models.Reply, error)
}

type CatalogSource interface {
	FetchItems(ctx context.Context) ([]models.CatalogItem, error)
}
