package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/events"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

func seedTicket(t *testing.T, h *harness, chatID int64) models.Ticket {
	t.Helper()
	ticket, err := h.ingestion.Ingest(context.Background(), InboundFromMessage(textMessage(customer(), chatID, "need help")))
	if err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	h.transport.reset()
	h.publisher.events = nil
	return ticket
}

func TestReplyRoundTrip(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ticket := seedTicket(t, h, chatC1)
	op := Actor{User: operator(operatorA), ChatID: operatorA}

	if err := h.replies.BeginReply(ctx, op, ticket.ID); err != nil {
		t.Fatalf("begin reply: %v", err)
	}
	if got, ok := h.sessions.GetPendingReply(operatorA); !ok || got != ticket.ID {
		t.Fatalf("expected pending target %s, got %q %v", ticket.ID, got, ok)
	}

	if err := h.replies.Forward(ctx, textMessage(operator(operatorA), operatorA, "on it")); err != nil {
		t.Fatalf("forward: %v", err)
	}

	out, ok := h.transport.lastTo(chatC1)
	if !ok || out.text != "Support: on it" {
		t.Fatalf("expected forwarded text, got %+v", out)
	}
	replies, err := h.tickets.ListReplies(ctx, ticket.ID)
	if err != nil || len(replies) != 1 {
		t.Fatalf("expected one reply record, got %v %v", replies, err)
	}
	if replies[0].TicketID != ticket.ID || replies[0].AdminID != operatorA || replies[0].Content != "on it" {
		t.Fatalf("unexpected reply %+v", replies[0])
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared")
	}
	confirm, _ := h.transport.lastTo(operatorA)
	if !strings.Contains(confirm.text, "Reply sent") {
		t.Fatalf("expected confirmation to operator, got %q", confirm.text)
	}
	if len(h.publisher.events) != 1 || h.publisher.events[0] != events.TypeReplySent {
		t.Fatalf("expected reply.sent event, got %v", h.publisher.events)
	}
}

func TestForwardAttachmentByReference(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)

	msg := textMessage(operator(operatorA), operatorA, "label")
	msg.Files = []chat.FileRef{{Kind: chat.FilePhoto, FileID: "op-photo"}}
	if err := h.replies.Forward(ctx, msg); err != nil {
		t.Fatalf("forward: %v", err)
	}
	out, _ := h.transport.lastTo(chatC1)
	if out.kind != "photo" || out.media.FileID != "op-photo" || out.text != "Support: label" {
		t.Fatalf("unexpected forwarded media %+v", out)
	}
	if h.transport.downloads != 0 {
		t.Fatal("forward must not download the file")
	}
	replies, _ := h.tickets.ListReplies(ctx, ticket.ID)
	if len(replies) != 1 || replies[0].Content != "[photo] label" {
		t.Fatalf("unexpected reply content %+v", replies)
	}
}

func TestForwardCaptionsOnlyFirstFile(t *testing.T) {
	h := newHarness()
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)

	msg := textMessage(operator(operatorA), operatorA, "see these")
	msg.Files = []chat.FileRef{{Kind: chat.FilePhoto, FileID: "f1"}, {Kind: chat.FileDocument, FileID: "f2"}}
	if err := h.replies.Forward(context.Background(), msg); err != nil {
		t.Fatalf("forward: %v", err)
	}
	out := h.transport.to(chatC1)
	if len(out) != 2 || out[0].text != "Support: see these" || out[1].text != "" {
		t.Fatalf("expected caption on the first file only, got %+v", out)
	}
}

func TestForwardPartialDeliveryRecordsDeliveredFiles(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)
	h.transport.failFiles["f2"] = true

	msg := textMessage(operator(operatorA), operatorA, "see these")
	msg.Files = []chat.FileRef{{Kind: chat.FilePhoto, FileID: "f1"}, {Kind: chat.FileDocument, FileID: "f2"}}
	err := h.replies.Forward(ctx, msg)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if out := h.transport.to(chatC1); len(out) != 1 || out[0].media.FileID != "f1" {
		t.Fatalf("expected only the first file delivered, got %+v", out)
	}
	replies, _ := h.tickets.ListReplies(ctx, ticket.ID)
	if len(replies) != 1 || replies[0].Content != "[photo] see these" {
		t.Fatalf("expected the delivered part recorded, got %+v", replies)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared after partial delivery")
	}
	report, _ := h.transport.lastTo(operatorA)
	if !strings.Contains(report.text, "partly delivered (1 of 2 files)") {
		t.Fatalf("unexpected report %q", report.text)
	}
}

func TestForwardWithoutPendingTarget(t *testing.T) {
	h := newHarness()
	err := h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello"))
	if !errors.Is(err, ErrSessionMiss) {
		t.Fatalf("expected session miss, got %v", err)
	}
	hint, _ := h.transport.lastTo(operatorA)
	if hint.text != msgNoActiveReply {
		t.Fatalf("expected status hint, got %q", hint.text)
	}
}

func TestForwardUnknownTicketClears(t *testing.T) {
	h := newHarness()
	h.sessions.SetPendingReply(operatorA, "missing-handle")

	err := h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared")
	}
	report, _ := h.transport.lastTo(operatorA)
	if !strings.Contains(report.text, "missing-handle") {
		t.Fatalf("expected handle in operator report, got %q", report.text)
	}
}

func TestForwardTicketWithoutChatClears(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	hdl, err := h.tickets.CreateTicket(ctx, models.Ticket{UserID: 5, CreatedAt: fixedNow, Category: models.CategoryText})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h.sessions.SetPendingReply(operatorA, hdl.ID)

	if err := h.replies.Forward(ctx, textMessage(operator(operatorA), operatorA, "hello")); err == nil {
		t.Fatal("expected error for ticket without chat id")
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared")
	}
}

func TestForwardSendFailureClearsByDefault(t *testing.T) {
	h := newHarness()
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)
	h.transport.failChats[chatC1] = true

	err := h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello"))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared after failed forward")
	}
	if replies, _ := h.tickets.ListReplies(context.Background(), ticket.ID); len(replies) != 0 {
		t.Fatal("no reply must be recorded for a failed forward")
	}
}

func TestForwardSendFailureRetainsWhenConfigured(t *testing.T) {
	h := newHarness()
	h.replies.RetainOnFailure = true
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)
	h.transport.failChats[chatC1] = true

	_ = h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello"))
	if got, ok := h.sessions.GetPendingReply(operatorA); !ok || got != ticket.ID {
		t.Fatalf("expected pending target retained, got %q %v", got, ok)
	}

	delete(h.transport.failChats, chatC1)
	if err := h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello again")); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared after successful retry")
	}
}

func TestForwardRecordFailureReportsDelivered(t *testing.T) {
	h := newHarness()
	ticket := seedTicket(t, h, chatC1)
	h.sessions.SetPendingReply(operatorA, ticket.ID)
	h.objects.failUpload = func(name string) bool { return strings.HasPrefix(name, "reply_") }

	err := h.replies.Forward(context.Background(), textMessage(operator(operatorA), operatorA, "hello"))
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if out, _ := h.transport.lastTo(chatC1); out.text != "Support: hello" {
		t.Fatalf("expected message delivered, got %q", out.text)
	}
	report, _ := h.transport.lastTo(operatorA)
	if !strings.Contains(report.text, "delivered") || !strings.Contains(report.text, "not be recorded") {
		t.Fatalf("unexpected report %q", report.text)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected pending target cleared")
	}
}

func TestCancelAndListAndView(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ticket := seedTicket(t, h, chatC1)
	op := Actor{User: operator(operatorA), ChatID: operatorA}

	h.sessions.SetPendingReply(operatorA, ticket.ID)
	if err := h.replies.Cancel(ctx, op); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := h.replies.Cancel(ctx, op); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if _, ok := h.sessions.GetPendingReply(operatorA); ok {
		t.Fatal("expected cleared after cancel")
	}

	h.transport.reset()
	if err := h.replies.ListTickets(ctx, op); err != nil {
		t.Fatalf("list: %v", err)
	}
	listed := h.transport.to(operatorA)
	if len(listed) != 1 || !strings.Contains(listed[0].text, ticket.ID) || !hasAction(listed[0].keyboard, chat.ActionReply) {
		t.Fatalf("unexpected list output %+v", listed)
	}

	if _, err := h.tickets.CreateReply(ctx, models.Reply{TicketID: ticket.ID, AdminID: operatorA, SentAt: fixedNow, Content: "earlier answer"}); err != nil {
		t.Fatalf("seed reply: %v", err)
	}
	h.transport.reset()
	if err := h.replies.ViewTicket(ctx, op, ticket.ID); err != nil {
		t.Fatalf("view: %v", err)
	}
	view, _ := h.transport.lastTo(operatorA)
	if !strings.Contains(view.text, "need help") || !strings.Contains(view.text, "earlier answer") {
		t.Fatalf("unexpected ticket details %q", view.text)
	}

	if err := h.replies.ViewTicket(ctx, op, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListTicketsEmpty(t *testing.T) {
	h := newHarness()
	if err := h.replies.ListTickets(context.Background(), Actor{User: operator(operatorA), ChatID: operatorA}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if msg, _ := h.transport.lastTo(operatorA); msg.text != msgNoTickets {
		t.Fatalf("expected empty notice, got %q", msg.text)
	}
}

func TestNonOperatorCannotUseReplyActions(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	intruder := Actor{User: customer(), ChatID: chatC1}

	if err := h.replies.BeginReply(ctx, intruder, "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := h.replies.Cancel(ctx, intruder); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := h.replies.ListTickets(ctx, intruder); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := h.sessions.GetPendingReply(customerU1); ok {
		t.Fatal("no session may be created for a non-operator")
	}
	if len(h.transport.to(chatC1)) != 0 {
		t.Fatal("unauthorized actions must not produce output")
	}
}

func TestReplyContent(t *testing.T) {
	cases := []struct {
		msg  *chat.Message
		want string
	}{
		{&chat.Message{Text: "hello"}, "hello"},
		{&chat.Message{Files: []chat.FileRef{{Kind: chat.FileDocument}}}, "[document]"},
		{&chat.Message{Text: "cap", Files: []chat.FileRef{{Kind: chat.FileVoice}}}, "[voice] cap"},
	}
	for _, tc := range cases {
		if got := ReplyContent(tc.msg); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
