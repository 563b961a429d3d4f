package domain

import (
	"slices"
	"time"
)

// User is the sender of a message.
type User struct {
	ID            string
	Name          string
	IsCurrentUser bool
}

// MessageType distinguishes regular messages from system rows.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeStatus   MessageType = "status"
	TypeGeo      MessageType = "geo"
	TypeFile     MessageType = "file"
	TypeDocument MessageType = "document"
	TypeURL      MessageType = "url"
	TypeCall     MessageType = "call"
)

// IsSystem reports whether the type is rendered as a standalone system row
// that never joins a same-sender group.
func (t MessageType) IsSystem() bool {
	return t == TypeStatus || t == TypeCall
}

// Status is the delivery state of a message.
type Status int

const (
	StatusNone Status = iota
	StatusSending
	StatusSent
	StatusReceived
	StatusRead
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusReceived:
		return "received"
	case StatusRead:
		return "read"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// IsDeliverable reports whether the server has accepted the message.
func (s Status) IsDeliverable() bool {
	return s == StatusSent || s == StatusReceived || s == StatusRead
}

// AttachmentType is the media kind of an attachment.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
)

// Attachment is a media item referenced by a message.
type Attachment struct {
	ID        string
	Thumbnail string // URL
	Full      string // URL
	Type      AttachmentType
}

// ReactionStatus is the delivery state of a reaction.
type ReactionStatus int

const (
	ReactionSending ReactionStatus = iota
	ReactionSent
	ReactionRead
	ReactionError
)

// Reaction is an emoji left on a message by a user.
type Reaction struct {
	ID        string
	User      User
	CreatedAt time.Time
	Emoji     string
	Status    ReactionStatus
}

func (r Reaction) equal(o Reaction) bool {
	return r.ID == o.ID && r.User == o.User && r.CreatedAt.Equal(o.CreatedAt) &&
		r.Emoji == o.Emoji && r.Status == o.Status
}

// Recording is a voice message.
type Recording struct {
	Duration        time.Duration
	WaveformSamples []float64
	URL             string
}

// Equal reports structural equality.
func (r *Recording) Equal(o *Recording) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Duration == o.Duration && r.URL == o.URL && slices.Equal(r.WaveformSamples, o.WaveformSamples)
}

// ReplyMessage is the quoted parent of a reply.
type ReplyMessage struct {
	ID          string
	User        User
	CreatedAt   time.Time
	Text        string
	Attachments []Attachment
	Recording   *Recording
}

// Equal reports structural equality.
func (r *ReplyMessage) Equal(o *ReplyMessage) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.ID == o.ID && r.User == o.User && r.CreatedAt.Equal(o.CreatedAt) &&
		r.Text == o.Text && slices.Equal(r.Attachments, o.Attachments) && r.Recording.Equal(o.Recording)
}

// Message is a single chat message supplied by the caller. ID is its only identity.
type Message struct {
	ID           string
	User         User
	Status       Status
	CreatedAt    time.Time
	Text         string
	Attachments  []Attachment
	Reactions    []Reaction
	Recording    *Recording
	ReplyMessage *ReplyMessage
	Type         MessageType
	IsEncrypted  bool
	IsDeleted    bool
}

// ReplyTargetID returns the id of the quoted parent, or "".
func (m Message) ReplyTargetID() string {
	if m.ReplyMessage == nil {
		return ""
	}
	return m.ReplyMessage.ID
}

// ToReplyMessage builds the quote used when answering m.
func (m Message) ToReplyMessage() *ReplyMessage {
	return &ReplyMessage{
		ID:          m.ID,
		User:        m.User,
		CreatedAt:   m.CreatedAt,
		Text:        m.Text,
		Attachments: slices.Clone(m.Attachments),
		Recording:   m.Recording,
	}
}

// Equal reports structural equality over every field.
func (m Message) Equal(o Message) bool {
	return m.ID == o.ID &&
		m.User == o.User &&
		m.Status == o.Status &&
		m.CreatedAt.Equal(o.CreatedAt) &&
		m.Text == o.Text &&
		slices.Equal(m.Attachments, o.Attachments) &&
		slices.EqualFunc(m.Reactions, o.Reactions, Reaction.equal) &&
		m.Recording.Equal(o.Recording) &&
		m.ReplyMessage.Equal(o.ReplyMessage) &&
		m.Type == o.Type &&
		m.IsEncrypted == o.IsEncrypted &&
		m.IsDeleted == o.IsDeleted
}

// ContentChanged reports whether a visible part of the bubble differs:
// text, attachments, recording, reply target, type or deletion.
func (m Message) ContentChanged(o Message) bool {
	return m.Text != o.Text ||
		!slices.Equal(m.Attachments, o.Attachments) ||
		!m.Recording.Equal(o.Recording) ||
		m.ReplyTargetID() != o.ReplyTargetID() ||
		m.Type != o.Type ||
		m.IsDeleted != o.IsDeleted
}

// Draft is a message being composed by the current user.
type Draft struct {
	Text         string
	ReplyMessage *ReplyMessage
	Attachments  []Attachment
	Recording    *Recording
	CreatedAt    time.Time
}
