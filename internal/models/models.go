package models

import "time"

const (
	CategoryText     = "text"
	CategoryPhoto    = "photo"
	CategoryDocument = "document"
	CategoryVoice    = "voice"
	CategoryMixed    = "mixed"
	CategoryPurchase = "purchase"
)

const (
	AttachmentPhoto    = "photo"
	AttachmentDocument = "document"
	AttachmentVoice    = "voice"
)

// EmptyBody is stored when a ticket carries neither text nor attachments.
const EmptyBody = "[empty message]"

type ObjectHandle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}

type Attachment struct {
	Kind     string       `json:"kind"`
	Object   ObjectHandle `json:"object"`
	MimeType string       `json:"mime_type,omitempty"`
}

type Ticket struct {
	// ID is the store handle; it is not part of the stored document.
	ID          string       `json:"-"`
	UserID      int64        `json:"user_id"`
	UserName    string       `json:"user_name,omitempty"`
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Category    string       `json:"category"`
	Attachments []Attachment `json:"attachments"`
}

type Reply struct {
	ID        string    `json:"-"`
	TicketID  string    `json:"ticket_id"`
	AdminID   int64     `json:"admin_id"`
	AdminName string    `json:"admin_name,omitempty"`
	SentAt    time.Time `json:"sent_at"`
	Content   string    `json:"content"`
}

type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

type BrowsingSession struct {
	Items    []CatalogItem `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// LastPage is ceil(len(Items)/PageSize)-1, clamped to 0.
func (s BrowsingSession) LastPage() int {
	if s.PageSize <= 0 || len(s.Items) == 0 {
		return 0
	}
	return (len(s.Items)+s.PageSize-1)/s.PageSize - 1
}

// Clamp returns s with Page forced into [0, LastPage()].
func (s BrowsingSession) Clamp() BrowsingSession {
	last := s.LastPage()
	if s.Page > last {
		s.Page = last
	}
	if s.Page < 0 {
		s.Page = 0
	}
	return s
}

// PageItems returns the slice of items on the current page.
func (s BrowsingSession) PageItems() []CatalogItem {
	if s.PageSize <= 0 {
		return nil
	}
	start := s.Page * s.PageSize
	if start >= len(s.Items) || start < 0 {
		return nil
	}
	end := start + s.PageSize
	if end > len(s.Items) {
		end = len(s.Items)
	}
	return s.Items[start:end]
}

// Find returns the item with the given id from the snapshot.
func (s BrowsingSession) Find(id string) (CatalogItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}
