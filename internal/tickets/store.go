package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

const (
	TicketsFolder     = "tickets"
	RepliesFolder     = "replies"
	AttachmentsFolder = "attachments"

	jsonMime = "application/json"
)

// Store persists tickets, replies and attachments as JSON documents and raw
// objects in an ObjectStore.
type Store struct {
	Objects storage.ObjectStore
	Logger  zerolog.Logger

	mu      sync.Mutex
	folders map[string]string
	group   singleflight.Group
}

func New(objects storage.ObjectStore, logger zerolog.Logger) *Store {
	return &Store{Objects: objects, Logger: logger, folders: map[string]string{}}
}

// Prefix is the name shared by a ticket record and its attachments.
func Prefix(t models.Ticket) string {
	return fmt.Sprintf("ticket_%d_%d", t.CreatedAt.Unix(), t.UserID)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Objects.Ping(ctx)
}

func (s *Store) folder(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	id, ok := s.folders[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}
	// Backends look a folder up before creating it, which is not atomic, so
	// concurrent first writers share one CreateFolder call.
	v, err, _ := s.group.Do(name, func() (any, error) {
		s.mu.Lock()
		id, ok := s.folders[name]
		s.mu.Unlock()
		if ok {
			return id, nil
		}
		id, err := s.Objects.CreateFolder(ctx, name)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.folders[name] = id
		s.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// UploadAttachment stores the n-th attachment of the ticket identified by
// prefix.
func (s *Store) UploadAttachment(ctx context.Context, prefix string, n int, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	folderID, err := s.folder(ctx, AttachmentsFolder)
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("attachments folder: %w", err)
	}
	objectName := fmt.Sprintf("%s_%d_%s", prefix, n, name)
	return s.Objects.UploadObject(ctx, folderID, objectName, data, mimeType)
}

func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.ObjectHandle, error) {
	folderID, err := s.folder(ctx, TicketsFolder)
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("tickets folder: %w", err)
	}
	if t.Attachments == nil {
		t.Attachments = []models.Attachment{}
	}
	body, err := json.Marshal(t)
	if err != nil {
		return models.ObjectHandle{}, err
	}
	return s.Objects.UploadObject(ctx, folderID, Prefix(t)+".json", body, jsonMime)
}

func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	data, err := s.Objects.GetObject(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	var t models.Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		return models.Ticket{}, fmt.Errorf("decode ticket %s: %w", id, err)
	}
	t.ID = id
	return t, nil
}

// ListTickets returns up to limit tickets, newest first. Records that fail to
// load are logged and skipped.
func (s *Store) ListTickets(ctx context.Context, limit int) ([]models.Ticket, error) {
	folderID, err := s.folder(ctx, TicketsFolder)
	if err != nil {
		return nil, fmt.Errorf("tickets folder: %w", err)
	}
	handles, err := s.Objects.ListObjects(ctx, folderID, "ticket_")
	if err != nil {
		return nil, err
	}

	out := make([]models.Ticket, 0, limit)
	for i := len(handles) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		t, err := s.GetTicket(ctx, handles[i].ID)
		if err != nil {
			s.Logger.Warn().Err(err).Str("object_id", handles[i].ID).Msg("skip unreadable ticket")
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) CreateReply(ctx context.Context, r models.Reply) (models.ObjectHandle, error) {
	folderID, err := s.folder(ctx, RepliesFolder)
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("replies folder: %w", err)
	}
	body, err := json.Marshal(r)
	if err != nil {
		return models.ObjectHandle{}, err
	}
	name := fmt.Sprintf("reply_%s_%d.json", r.TicketID, r.SentAt.UnixNano())
	return s.Objects.UploadObject(ctx, folderID, name, body, jsonMime)
}

// ListReplies returns the replies recorded for a ticket, oldest first.
func (s *Store) ListReplies(ctx context.Context, ticketID string) ([]models.Reply, error) {
	folderID, err := s.folder(ctx, RepliesFolder)
	if err != nil {
		return nil, fmt.Errorf("replies folder: %w", err)
	}
	handles, err := s.Objects.ListObjects(ctx, folderID, "reply_"+ticketID+"_")
	if err != nil {
		return nil, err
	}
	out := make([]models.Reply, 0, len(handles))
	for _, h := range handles {
		data, err := s.Objects.GetObject(ctx, h.ID)
		if err != nil {
			s.Logger.Warn().Err(err).Str("object_id", h.ID).Msg("skip unreadable reply")
			continue
		}
		var r models.Reply
		if err := json.Unmarshal(data, &r); err != nil {
			s.Logger.Warn().Err(err).Str("object_id", h.ID).Msg("skip malformed reply")
			continue
		}
		r.ID = h.ID
		out = append(out, r)
	}
	return out, nil
}
