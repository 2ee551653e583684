package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/session"
)

const defaultPageSize = 5

// Browsing pages through a per-user snapshot of the catalog.
type Browsing struct {
	Catalog   CatalogSource
	Transport chat.Transport
	Sessions  session.BrowsingSessions
	PageSize  int
	Logger    zerolog.Logger
}

func (b *Browsing) pageSize() int {
	if b.PageSize <= 0 {
		return defaultPageSize
	}
	return b.PageSize
}

// Browse renders the current page, fetching the catalog when the user has no
// session yet. Two concurrent first browses may both fetch; the last write
// wins.
func (b *Browsing) Browse(ctx context.Context, a Actor) error {
	log := loggerFrom(ctx, b.Logger)
	s, ok := b.Sessions.Get(a.User.ID)
	if !ok {
		items, err := b.Catalog.FetchItems(ctx)
		if err != nil {
			err = catalogErr("fetch catalog", err)
			log.Error().Err(err).Msg("catalog fetch failed")
			b.send(ctx, log, a.ChatID, msgCatalogUnavailable, nil)
			return err
		}
		items = buttonSafe(log, items)
		if len(items) == 0 {
			b.send(ctx, log, a.ChatID, msgCatalogEmpty, nil)
			return nil
		}
		s = models.BrowsingSession{Items: items, Page: 0, PageSize: b.pageSize()}
		b.Sessions.Set(a.User.ID, s)
	}
	return b.render(ctx, log, a, s)
}

// buttonSafe drops items whose id cannot be carried in select or buy
// callback data.
func buttonSafe(log zerolog.Logger, items []models.CatalogItem) []models.CatalogItem {
	out := items[:0]
	for _, item := range items {
		if !chat.Select(item.ID).Fits() || !chat.Buy(item.ID).Fits() {
			log.Warn().Str("item_id", item.ID).Msg("catalog item id too long for buttons, skipped")
			continue
		}
		out = append(out, item)
	}
	return out
}

func (b *Browsing) NextPage(ctx context.Context, a Actor) error {
	return b.move(ctx, a, 1)
}

func (b *Browsing) PrevPage(ctx context.Context, a Actor) error {
	return b.move(ctx, a, -1)
}

func (b *Browsing) move(ctx context.Context, a Actor, delta int) error {
	s, ok := b.Sessions.Get(a.User.ID)
	if !ok {
		return b.Browse(ctx, a)
	}
	s.Page += delta
	s = s.Clamp()
	b.Sessions.Set(a.User.ID, s)

	log := loggerFrom(ctx, b.Logger)
	if err := b.render(ctx, log, a, s); err != nil {
		return err
	}
	// The page the user navigated from is replaced by the new one.
	if a.MessageID != 0 {
		if err := b.Transport.DeleteMessage(ctx, a.ChatID, a.MessageID); err != nil {
			log.Debug().Err(err).Int("message_id", a.MessageID).Msg("old page not deleted")
		}
	}
	return nil
}

// Lookup finds an item in the user's snapshot.
func (b *Browsing) Lookup(userID int64, itemID string) (models.CatalogItem, bool) {
	s, ok := b.Sessions.Get(userID)
	if !ok {
		return models.CatalogItem{}, false
	}
	return s.Find(itemID)
}

// Select shows an item's details. An id missing from the snapshot is
// ignored.
func (b *Browsing) Select(ctx context.Context, a Actor, itemID string) error {
	item, ok := b.Lookup(a.User.ID, itemID)
	if !ok {
		return nil
	}
	log := loggerFrom(ctx, b.Logger)
	text, kb := renderItem(item)
	if item.ImageURL != "" {
		err := b.Transport.SendPhoto(ctx, a.ChatID, chat.Media{URL: item.ImageURL}, text, kb)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("item_id", item.ID).Msg("item photo failed, sending text")
	}
	if err := b.Transport.SendText(ctx, a.ChatID, text, kb); err != nil {
		err = transportErr("send item", err)
		log.Error().Err(err).Str("item_id", item.ID).Msg("item detail failed")
		return err
	}
	return nil
}

func (b *Browsing) render(ctx context.Context, log zerolog.Logger, a Actor, s models.BrowsingSession) error {
	text, kb := renderPage(s)
	if err := b.Transport.SendText(ctx, a.ChatID, text, kb); err != nil {
		err = transportErr("render page", err)
		log.Error().Err(err).Int("page", s.Page).Msg("catalog page failed")
		return err
	}
	return nil
}

func (b *Browsing) send(ctx context.Context, log zerolog.Logger, chatID int64, text string, kb chat.Keyboard) {
	if err := b.Transport.SendText(ctx, chatID, text, kb); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}
