package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

const (
	msgWelcome = "Welcome! Browse our catalog or send us a message and our support team will get back to you."
	msgHelp    = "Send any message, photo, document or voice note to reach support.\n/catalog - browse products\n/start - main menu"
	msgOpHelp  = "/list - recent tickets\n/reply <ticket> - answer a ticket\n/cancel - stop replying"
	msgContact = "Send us your message and our support team will get back to you."

	msgTicketReceived = "Thanks! Your message has been received. Our support team will reply here soon."
	msgTicketFailed   = "Sorry, we could not process your message right now. Please try again later."
	msgPurchaseSent   = "Thanks! Your order request has been sent. Our team will contact you here."

	msgCatalogEmpty       = "The catalog is empty right now."
	msgCatalogUnavailable = "Sorry, the catalog is unavailable right now. Please try again later."

	msgNoActiveReply = "No active reply. Use /list to see recent tickets, then /reply <ticket> to answer one."
	msgNoTickets     = "No tickets yet."

	noText     = "(no text)"
	timeLayout = "2006-01-02 15:04:05 MST"
)

func welcomeKeyboard() chat.Keyboard {
	return chat.Keyboard{
		chat.Row(chat.ActionButton("Browse catalog", chat.Browse())),
		chat.Row(chat.ActionButton("Contact support", chat.Contact())),
	}
}

// ticketKeyboard offers view and reply, plus a link row for attachments the
// store can serve over the web.
func ticketKeyboard(t models.Ticket) chat.Keyboard {
	kb := chat.Keyboard{
		chat.Row(chat.ActionButton("View", chat.View(t.ID)), chat.ActionButton("Reply", chat.Reply(t.ID))),
	}
	var links []chat.Button
	for i, a := range t.Attachments {
		if strings.HasPrefix(a.Object.Link, "https://") || strings.HasPrefix(a.Object.Link, "http://") {
			links = append(links, chat.LinkButton(fmt.Sprintf("%s %d", a.Kind, i+1), a.Object.Link))
		}
	}
	if len(links) > 0 {
		kb = append(kb, links)
	}
	return kb
}

func replyKeyboard(handle string) chat.Keyboard {
	return chat.Keyboard{chat.Row(chat.ActionButton("Reply", chat.Reply(handle)))}
}

func cancelKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(chat.ActionButton("Cancel", chat.Cancel()))}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func bodyOrMarker(text string) string {
	if strings.TrimSpace(text) == "" {
		return noText
	}
	return text
}

func senderLabel(t models.Ticket) string {
	name := t.UserName
	if name == "" {
		name = "user"
	}
	return fmt.Sprintf("%s (id %d)", name, t.UserID)
}

// renderNotification is the operator alert for a new ticket.
func renderNotification(t models.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New ticket from %s\n", senderLabel(t))
	fmt.Fprintf(&b, "Ticket: %s\n", t.ID)
	fmt.Fprintf(&b, "Time: %s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(&b, "Category: %s\n", t.Category)
	if n := len(t.Attachments); n > 0 {
		fmt.Fprintf(&b, "Attachments: %d\n", n)
	}
	b.WriteString("\n")
	b.WriteString(bodyOrMarker(t.Text))
	return b.String()
}

func renderTicketSummary(t models.Ticket) string {
	text := bodyOrMarker(t.Text)
	if r := []rune(text); len(r) > 120 {
		text = string(r[:120]) + "..."
	}
	return fmt.Sprintf("Ticket %s\n%s, %s, %s\n%s", t.ID, senderLabel(t), t.Category, formatTime(t.CreatedAt), text)
}

func renderTicketDetails(t models.Ticket, replies []models.Reply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s\n", t.ID)
	fmt.Fprintf(&b, "From: %s\n", senderLabel(t))
	fmt.Fprintf(&b, "Chat: %d\n", t.ChatID)
	fmt.Fprintf(&b, "Created: %s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(&b, "Category: %s\n\n", t.Category)
	b.WriteString(bodyOrMarker(t.Text))

	if len(t.Attachments) > 0 {
		b.WriteString("\n\nAttachments:")
		for _, a := range t.Attachments {
			if a.Object.Link != "" {
				fmt.Fprintf(&b, "\n- %s %s (%s)", a.Kind, a.Object.Name, a.Object.Link)
			} else {
				fmt.Fprintf(&b, "\n- %s %s", a.Kind, a.Object.Name)
			}
		}
	}

	if len(replies) == 0 {
		b.WriteString("\n\nNo replies yet.")
		return b.String()
	}
	b.WriteString("\n\nReplies:")
	for _, r := range replies {
		who := r.AdminName
		if who == "" {
			who = fmt.Sprintf("operator %d", r.AdminID)
		}
		fmt.Fprintf(&b, "\n- [%s] %s: %s", formatTime(r.SentAt), who, r.Content)
	}
	return b.String()
}

// renderPage lists the current page and builds one select button per item
// plus a navigation row.
func renderPage(s models.BrowsingSession) (string, chat.Keyboard) {
	var b strings.Builder
	fmt.Fprintf(&b, "Catalog (page %d of %d)", s.Page+1, s.LastPage()+1)

	items := s.PageItems()
	kb := make(chat.Keyboard, 0, len(items)+1)
	for i, item := range items {
		n := s.Page*s.PageSize + i + 1
		fmt.Fprintf(&b, "\n\n%d. %s — %s", n, itemName(item), item.Price)
		if item.Description != "" {
			fmt.Fprintf(&b, "\n%s", item.Description)
		}
		kb = append(kb, chat.Row(chat.ActionButton(itemName(item), chat.Select(item.ID))))
	}

	var nav []chat.Button
	if s.Page > 0 {
		nav = append(nav, chat.ActionButton("« Prev", chat.PrevPage()))
	}
	if s.Page < s.LastPage() {
		nav = append(nav, chat.ActionButton("Next »", chat.NextPage()))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	return b.String(), kb
}

func renderItem(item models.CatalogItem) (string, chat.Keyboard) {
	var b strings.Builder
	b.WriteString(itemName(item))
	if item.Price != "" {
		fmt.Fprintf(&b, "\nPrice: %s", item.Price)
	}
	if item.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", item.Description)
	}
	kb := chat.Keyboard{
		chat.Row(chat.ActionButton("Buy", chat.Buy(item.ID)), chat.ActionButton("Back", chat.Browse())),
	}
	return b.String(), kb
}

func itemName(item models.CatalogItem) string {
	if item.Name == "" {
		return item.ID
	}
	return item.Name
}

func purchaseText(item models.CatalogItem) string {
	text := fmt.Sprintf("Purchase request: %s (%s)", itemName(item), item.ID)
	if item.Price != "" {
		text += ", " + item.Price
	}
	return text
}
