package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/chat"
	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/session"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
	"github.com/SoeMoeHtet18/telegram-bot/internal/tickets"
)

var errBoom = errors.New("boom")

type sent struct {
	kind     string
	chatID   int64
	text     string
	media    chat.Media
	keyboard chat.Keyboard
}

// fakeTransport records every outbound call. failChats makes sends to a chat
// fail, failFiles makes sends of a file id fail and failDownload makes
// Download fail for a file id.
type fakeTransport struct {
	mu           sync.Mutex
	sent         []sent
	answered     []string
	deleted      []int
	files        map[string][]byte
	failChats    map[int64]bool
	failFiles    map[string]bool
	failDownload map[string]bool
	failAnswer   bool
	downloads    int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		files:        map[string][]byte{},
		failChats:    map[int64]bool{},
		failFiles:    map[string]bool{},
		failDownload: map[string]bool{},
	}
}

func (f *fakeTransport) record(s sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChats[s.chatID] {
		return fmt.Errorf("send to %d: %w", s.chatID, errBoom)
	}
	if s.media.FileID != "" && f.failFiles[s.media.FileID] {
		return fmt.Errorf("send %s: %w", s.media.FileID, errBoom)
	}
	f.sent = append(f.sent, s)
	return nil
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string, kb chat.Keyboard) error {
	return f.record(sent{kind: "text", chatID: chatID, text: text, keyboard: kb})
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, m chat.Media, caption string, kb chat.Keyboard) error {
	return f.record(sent{kind: "photo", chatID: chatID, text: caption, media: m, keyboard: kb})
}

func (f *fakeTransport) SendDocument(_ context.Context, chatID int64, m chat.Media, caption string, kb chat.Keyboard) error {
	return f.record(sent{kind: "document", chatID: chatID, text: caption, media: m, keyboard: kb})
}

func (f *fakeTransport) SendVoice(_ context.Context, chatID int64, m chat.Media, caption string, kb chat.Keyboard) error {
	return f.record(sent{kind: "voice", chatID: chatID, text: caption, media: m, keyboard: kb})
}

func (f *fakeTransport) Download(_ context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if f.failDownload[fileID] {
		return nil, errBoom
	}
	data, ok := f.files[fileID]
	if !ok {
		data = []byte("data-" + fileID)
	}
	return data, nil
}

func (f *fakeTransport) FileLink(_ context.Context, fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	if f.failAnswer {
		return errBoom
	}
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) to(chatID int64) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sent
	for _, s := range f.sent {
		if s.chatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeTransport) lastTo(chatID int64) (sent, bool) {
	msgs := f.to(chatID)
	if len(msgs) == 0 {
		return sent{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.answered = nil
	f.deleted = nil
}

// countingStore wraps the memory store to count uploads and inject failures.
type countingStore struct {
	*storage.MemoryStore
	mu         sync.Mutex
	uploads    []string
	failUpload func(name string) bool
	failGet    bool
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore()}
}

func (c *countingStore) UploadObject(ctx context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	c.mu.Lock()
	fail := c.failUpload != nil && c.failUpload(name)
	if !fail {
		c.uploads = append(c.uploads, name)
	}
	c.mu.Unlock()
	if fail {
		return models.ObjectHandle{}, errBoom
	}
	return c.MemoryStore.UploadObject(ctx, folderID, name, data, mimeType)
}

func (c *countingStore) GetObject(ctx context.Context, id string) ([]byte, error) {
	if c.failGet {
		return nil, errBoom
	}
	return c.MemoryStore.GetObject(ctx, id)
}

func (c *countingStore) uploadsWithPrefix(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, n := range c.uploads {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

type fakeCatalog struct {
	mu    sync.Mutex
	items []models.CatalogItem
	err   error
	calls int
}

func (f *fakeCatalog) FetchItems(context.Context) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.CatalogItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCatalog) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func catalogItems(n int) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, models.CatalogItem{
			ID:          fmt.Sprintf("p%d", i),
			Name:        fmt.Sprintf("Item %d", i),
			Price:       fmt.Sprintf("%d.00", i*10),
			Description: fmt.Sprintf("Description %d", i),
		})
	}
	return items
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

const (
	operatorA  int64 = 900
	operatorB  int64 = 901
	customerU1 int64 = 100
	chatC1     int64 = 100
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	transport  *fakeTransport
	objects    *countingStore
	tickets    *tickets.Store
	catalog    *fakeCatalog
	sessions   *session.Registry
	publisher  *recordingPublisher
	ingestion  *Ingestion
	replies    *Replies
	browsing   *Browsing
	dispatcher *Dispatcher
}

func newHarness() *harness {
	h := &harness{
		transport: newFakeTransport(),
		objects:   newCountingStore(),
		catalog:   &fakeCatalog{},
		sessions:  session.NewMemoryRegistry(),
		publisher: &recordingPublisher{},
	}
	h.tickets = tickets.New(h.objects, zerolog.Nop())
	ops := NewOperators(operatorA, operatorB)
	now := func() time.Time { return fixedNow }

	h.ingestion = &Ingestion{
		Tickets:   h.tickets,
		Transport: h.transport,
		Operators: ops,
		Events:    h.publisher,
		Logger:    zerolog.Nop(),
		Now:       now,
	}
	h.replies = &Replies{
		Tickets:   h.tickets,
		Transport: h.transport,
		Sessions:  h.sessions.Pending,
		Operators: ops,
		Events:    h.publisher,
		Logger:    zerolog.Nop(),
		Now:       now,
	}
	h.browsing = &Browsing{
		Catalog:   h.catalog,
		Transport: h.transport,
		Sessions:  h.sessions.Browsing,
		PageSize:  5,
		Logger:    zerolog.Nop(),
	}
	h.dispatcher = &Dispatcher{
		Ingestion: h.ingestion,
		Replies:   h.replies,
		Browsing:  h.browsing,
		Transport: h.transport,
		Logger:    zerolog.Nop(),
	}
	return h
}

func customer() chat.User {
	return chat.User{ID: customerU1, Name: "Ann"}
}

func operator(id int64) chat.User {
	return chat.User{ID: id, Name: "Op"}
}

func textMessage(from chat.User, chatID int64, text string) *chat.Message {
	return &chat.Message{Meta: chat.Meta{UpdateID: 1, ChatID: chatID, MessageID: 1, From: from, At: fixedNow}, Text: text}
}

func command(from chat.User, name, args string) *chat.Command {
	return &chat.Command{Meta: chat.Meta{UpdateID: 2, ChatID: from.ID, MessageID: 2, From: from, At: fixedNow}, Name: name, Args: args}
}

func callback(from chat.User, id string, a chat.Action) *chat.Callback {
	return &chat.Callback{Meta: chat.Meta{UpdateID: 3, ChatID: from.ID, MessageID: 30, From: from}, CallbackID: id, Action: a}
}

func buttonActions(kb chat.Keyboard) []chat.Action {
	var out []chat.Action
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.Action)
		}
	}
	return out
}

func hasAction(kb chat.Keyboard, kind chat.ActionKind) bool {
	for _, a := range buttonActions(kb) {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
