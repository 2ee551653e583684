package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	TypeTicketCreated = "ticket.created"
	TypeReplySent     = "reply.sent"

	Producer = "telegram-bot"
)

type Meta struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer string    `json:"producer"`
}

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type TicketCreated struct {
	TicketID    string    `json:"ticket_id"`
	UserID      int64     `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	Category    string    `json:"category"`
	Attachments int       `json:"attachments"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReplySent struct {
	TicketID string    `json:"ticket_id"`
	AdminID  int64     `json:"admin_id"`
	SentAt   time.Time `json:"sent_at"`
}

func NewEnvelope(eventType string, data any) Envelope {
	return Envelope{
		Meta: Meta{ID: uuid.NewString(), Type: eventType, Time: time.Now().UTC(), Producer: Producer},
		Data: data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close() error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

// AMQP publishes envelopes to a topic exchange with the event type as the
// routing key.
type AMQP struct {
	conn     *amqp.Connection
	exchange string
	logger   zerolog.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

func NewAMQP(url, exchange string, logger zerolog.Logger) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQP{conn: conn, exchange: exchange, logger: logger, ch: ch}, nil
}

func (p *AMQP) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQP) Publish(ctx context.Context, eventType string, data any) error {
	env := NewEnvelope(eventType, data)
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Meta.ID,
		Timestamp:    env.Meta.Time,
		Body:         body,
	})
	if err == nil {
		p.logger.Debug().Str("type", eventType).Str("exchange", p.exchange).Msg("event published")
	}
	return err
}

func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}
