package chat

import "context"

type Button struct {
	Text   string
	Action Action
	URL    string
}

// Keyboard is an inline keyboard, one slice per row.
type Keyboard [][]Button

func Row(buttons ...Button) []Button {
	return buttons
}

func ActionButton(text string, a Action) Button {
	return Button{Text: text, Action: a}
}

func LinkButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Media is an outbound file: an existing platform file id, a public URL, or
// raw bytes with a name.
type Media struct {
	FileID string
	URL    string
	Name   string
	Bytes  []byte
}

type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, file Media, caption string, kb Keyboard) error
	SendDocument(ctx context.Context, chatID int64, file Media, caption string, kb Keyboard) error
	SendVoice(ctx context.Context, chatID int64, file Media, caption string, kb Keyboard) error
	Download(ctx context.Context, fileID string) ([]byte, error)
	FileLink(ctx context.Context, fileID string) (string, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
