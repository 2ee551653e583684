package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
)

// Client implements chat.Transport over the Telegram Bot API.
type Client struct {
	bot          *tgbotapi.BotAPI
	http         *http.Client
	token        string
	fileEndpoint string

	// MaxDownloadBytes caps Download; zero means unlimited.
	MaxDownloadBytes int64
}

type Options struct {
	Token        string
	APIEndpoint  string
	FileEndpoint string
	HTTPClient   *http.Client
}

// New connects to the Bot API and verifies the token with getMe.
func New(opts Options) (*Client, error) {
	if opts.APIEndpoint == "" {
		opts.APIEndpoint = tgbotapi.APIEndpoint
	}
	if opts.FileEndpoint == "" {
		opts.FileEndpoint = tgbotapi.FileEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, opts.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Client{
		bot:          bot,
		http:         opts.HTTPClient,
		token:        opts.Token,
		fileEndpoint: opts.FileEndpoint,
	}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup := toMarkup(kb); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, file chat.Media, caption string, kb chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewPhoto(chatID, toFile(file))
	cfg.Caption = caption
	if markup := toMarkup(kb); markup != nil {
		cfg.ReplyMarkup = markup
	}
	if _, err := c.bot.Send(cfg); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, file chat.Media, caption string, kb chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewDocument(chatID, toFile(file))
	cfg.Caption = caption
	if markup := toMarkup(kb); markup != nil {
		cfg.ReplyMarkup = markup
	}
	if _, err := c.bot.Send(cfg); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, file chat.Media, caption string, kb chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewVoice(chatID, toFile(file))
	cfg.Caption = caption
	if markup := toMarkup(kb); markup != nil {
		cfg.ReplyMarkup = markup
	}
	if _, err := c.bot.Send(cfg); err != nil {
		return fmt.Errorf("send voice: %w", err)
	}
	return nil
}

func (c *Client) FileLink(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	return fmt.Sprintf(c.fileEndpoint, c.token, f.FilePath), nil
}

func (c *Client) Download(ctx context.Context, fileID string) ([]byte, error) {
	link, err := c.FileLink(ctx, fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", fileID, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if c.MaxDownloadBytes > 0 {
		body = io.LimitReader(resp.Body, c.MaxDownloadBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	if c.MaxDownloadBytes > 0 && int64(len(data)) > c.MaxDownloadBytes {
		return nil, fmt.Errorf("download %s: file exceeds %d bytes", fileID, c.MaxDownloadBytes)
	}
	return data, nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SetWebhook registers url as the update endpoint. A non-empty secret is
// echoed back by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if _, err := c.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

func toFile(m chat.Media) tgbotapi.RequestFileData {
	switch {
	case m.FileID != "":
		return tgbotapi.FileID(m.FileID)
	case m.URL != "":
		return tgbotapi.FileURL(m.URL)
	default:
		return tgbotapi.FileBytes{Name: m.Name, Bytes: m.Bytes}
	}
}

func toMarkup(kb chat.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Action.Encode()))
		}
		rows = append(rows, buttons)
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
