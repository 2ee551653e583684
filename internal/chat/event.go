package chat

import "time"

type User struct {
	ID       int64
	Name     string
	Username string
}

// Label is how a user is shown to operators.
func (u User) Label() string {
	switch {
	case u.Name != "" && u.Username != "":
		return u.Name + " (@" + u.Username + ")"
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return "@" + u.Username
	default:
		return "user"
	}
}

const (
	FilePhoto    = "photo"
	FileDocument = "document"
	FileVoice    = "voice"
)

// FileRef points at a file held by the chat platform.
type FileRef struct {
	Kind     string
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// Meta is shared by every inbound event.
type Meta struct {
	UpdateID  int
	ChatID    int64
	MessageID int
	From      User
	At        time.Time
}

// Event is one decoded inbound update. The set of variants is closed:
// *Message, *Command and *Callback.
type Event interface {
	EventMeta() Meta
	isEvent()
}

// Message is free text and/or media. Text holds the caption for media.
type Message struct {
	Meta
	Text  string
	Files []FileRef
}

type Command struct {
	Meta
	Name string
	Args string
}

type Callback struct {
	Meta
	CallbackID string
	Action     Action
}

func (m *Message) EventMeta() Meta  { return m.Meta }
func (c *Command) EventMeta() Meta  { return c.Meta }
func (c *Callback) EventMeta() Meta { return c.Meta }

func (*Message) isEvent()  {}
func (*Command) isEvent()  {}
func (*Callback) isEvent() {}
