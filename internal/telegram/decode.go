package telegram

import (
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
)

// ParseUpdate decodes a webhook body. Updates the bot does not handle
// (edits, channel posts, inline queries) decode to a nil event.
func ParseUpdate(body []byte) (chat.Event, error) {
	var u tgbotapi.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, err
	}
	return FromUpdate(u), nil
}

func FromUpdate(u tgbotapi.Update) chat.Event {
	switch {
	case u.CallbackQuery != nil:
		return fromCallback(u.UpdateID, u.CallbackQuery)
	case u.Message != nil:
		return fromMessage(u.UpdateID, u.Message)
	default:
		return nil
	}
}

func fromCallback(updateID int, q *tgbotapi.CallbackQuery) chat.Event {
	meta := chat.Meta{UpdateID: updateID, From: toUser(q.From)}
	if q.Message != nil {
		meta.MessageID = q.Message.MessageID
		meta.At = q.Message.Time()
		if q.Message.Chat != nil {
			meta.ChatID = q.Message.Chat.ID
		}
	}
	if meta.ChatID == 0 {
		meta.ChatID = meta.From.ID
	}
	return &chat.Callback{Meta: meta, CallbackID: q.ID, Action: chat.ParseAction(q.Data)}
}

func fromMessage(updateID int, m *tgbotapi.Message) chat.Event {
	if m.From == nil || m.Chat == nil {
		return nil
	}
	meta := chat.Meta{
		UpdateID:  updateID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		From:      toUser(m.From),
		At:        m.Time(),
	}

	if m.IsCommand() {
		return &chat.Command{Meta: meta, Name: strings.ToLower(m.Command()), Args: strings.TrimSpace(m.CommandArguments())}
	}

	msg := &chat.Message{Meta: meta, Text: m.Text}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	if len(m.Photo) > 0 {
		// Sizes are ordered smallest first.
		p := m.Photo[len(m.Photo)-1]
		msg.Files = append(msg.Files, chat.FileRef{
			Kind:     chat.FilePhoto,
			FileID:   p.FileID,
			FileName: p.FileUniqueID + ".jpg",
			MimeType: "image/jpeg",
			Size:     int64(p.FileSize),
		})
	}
	if d := m.Document; d != nil {
		name := d.FileName
		if name == "" {
			name = d.FileUniqueID
		}
		msg.Files = append(msg.Files, chat.FileRef{
			Kind:     chat.FileDocument,
			FileID:   d.FileID,
			FileName: name,
			MimeType: d.MimeType,
			Size:     int64(d.FileSize),
		})
	}
	if v := m.Voice; v != nil {
		mime := v.MimeType
		if mime == "" {
			mime = "audio/ogg"
		}
		msg.Files = append(msg.Files, chat.FileRef{
			Kind:     chat.FileVoice,
			FileID:   v.FileID,
			FileName: v.FileUniqueID + ".ogg",
			MimeType: mime,
			Size:     int64(v.FileSize),
		})
	}
	return msg
}

func toUser(u *tgbotapi.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return chat.User{ID: u.ID, Name: name, Username: u.UserName}
}
