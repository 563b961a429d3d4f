// Package transcript loads chat history from YAML and serves it through an
// in-memory chat backend.
package transcript

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/CrestNiraj12/terminalchat/domain"
)

//go:embed demo.yaml
var demo []byte

// Transcript is a parsed chat: its participants, the stored history oldest
// first and the scripted messages that arrive while the chat is open.
type Transcript struct {
	Users    map[string]domain.User
	Me       domain.User
	History  []domain.Message
	Incoming []Scripted
}

// Scripted is a message delivered After the chat opens.
type Scripted struct {
	After   time.Duration
	Message domain.Message
}

type fileUser struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type fileReaction struct {
	User  string `yaml:"user"`
	Emoji string `yaml:"emoji"`
}

type fileAttachment struct {
	Type      string `yaml:"type"`
	URL       string `yaml:"url"`
	Thumbnail string `yaml:"thumbnail"`
}

type fileRecording struct {
	Duration time.Duration `yaml:"duration"`
	URL      string        `yaml:"url"`
	Waveform []float64     `yaml:"waveform"`
}

type fileMessage struct {
	ID          string           `yaml:"id"`
	User        string           `yaml:"user"`
	At          time.Time        `yaml:"at"`
	Ago         time.Duration    `yaml:"ago"`
	After       time.Duration    `yaml:"after"`
	Text        string           `yaml:"text"`
	Type        string           `yaml:"type"`
	Status      string           `yaml:"status"`
	ReplyTo     string           `yaml:"reply_to"`
	Deleted     bool             `yaml:"deleted"`
	Encrypted   bool             `yaml:"encrypted"`
	Reactions   []fileReaction   `yaml:"reactions"`
	Attachments []fileAttachment `yaml:"attachments"`
	Recording   *fileRecording   `yaml:"recording"`
}

type file struct {
	Me       string        `yaml:"me"`
	Users    []fileUser    `yaml:"users"`
	History  []fileMessage `yaml:"history"`
	Incoming []fileMessage `yaml:"incoming"`
}

// Demo returns the embedded demo transcript with history placed relative to
// now.
func Demo(me string, now time.Time) (Transcript, error) {
	return Parse(demo, me, now)
}

// Load reads a transcript file. An empty path loads the demo.
func Load(path, me string, now time.Time) (Transcript, error) {
	if path == "" {
		return Demo(me, now)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("reading transcript: %w", err)
	}
	return Parse(data, me, now)
}

// Parse decodes a transcript. me overrides the file's current user when
// non-empty. History entries use either an absolute "at" or an "ago"
// duration before now.
func Parse(data []byte, me string, now time.Time) (Transcript, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Transcript{}, fmt.Errorf("parsing transcript: %w", err)
	}
	if me == "" {
		me = f.Me
	}

	t := Transcript{Users: make(map[string]domain.User, len(f.Users))}
	for _, u := range f.Users {
		if u.ID == "" {
			return Transcript{}, errors.New("transcript user without id")
		}
		name := u.Name
		if name == "" {
			name = u.ID
		}
		t.Users[u.ID] = domain.User{ID: u.ID, Name: name, IsCurrentUser: u.ID == me}
	}
	current, ok := t.Users[me]
	if !ok {
		return Transcript{}, fmt.Errorf("current user %q is not a transcript user", me)
	}
	t.Me = current

	byID := make(map[string]domain.Message, len(f.History))
	for i, fm := range f.History {
		at := fm.At
		if at.IsZero() {
			at = now.Add(-fm.Ago)
		}
		m, err := t.message(fm, at, byID)
		if err != nil {
			return Transcript{}, fmt.Errorf("history[%d]: %w", i, err)
		}
		if m.Status == domain.StatusNone {
			m.Status = domain.StatusRead
		}
		if _, dup := byID[m.ID]; dup {
			return Transcript{}, fmt.Errorf("history[%d]: %w: %s", i, domain.ErrDuplicateID, m.ID)
		}
		byID[m.ID] = m
		t.History = append(t.History, m)
	}
	sort.SliceStable(t.History, func(i, j int) bool {
		return t.History[i].CreatedAt.Before(t.History[j].CreatedAt)
	})

	for i, fm := range f.Incoming {
		m, err := t.message(fm, time.Time{}, byID)
		if err != nil {
			return Transcript{}, fmt.Errorf("incoming[%d]: %w", i, err)
		}
		if m.Status == domain.StatusNone || m.Status == domain.StatusSent {
			m.Status = domain.StatusReceived
		}
		t.Incoming = append(t.Incoming, Scripted{After: fm.After, Message: m})
	}
	sort.SliceStable(t.Incoming, func(i, j int) bool { return t.Incoming[i].After < t.Incoming[j].After })
	return t, nil
}

func (t Transcript) message(fm fileMessage, at time.Time, byID map[string]domain.Message) (domain.Message, error) {
	user, ok := t.Users[fm.User]
	if !ok {
		return domain.Message{}, fmt.Errorf("unknown user %q", fm.User)
	}
	status, err := parseStatus(fm.Status)
	if err != nil {
		return domain.Message{}, err
	}
	id := fm.ID
	if id == "" {
		id = uuid.NewString()
	}
	typ := domain.MessageType(strings.ToLower(fm.Type))
	if typ == "" {
		typ = domain.TypeText
	}

	m := domain.Message{
		ID:          id,
		User:        user,
		Status:      status,
		CreatedAt:   at,
		Text:        strings.TrimSpace(fm.Text),
		Type:        typ,
		IsDeleted:   fm.Deleted,
		IsEncrypted: fm.Encrypted,
	}
	if fm.ReplyTo != "" {
		parent, ok := byID[fm.ReplyTo]
		if !ok {
			return domain.Message{}, fmt.Errorf("reply to %q: %w", fm.ReplyTo, domain.ErrMessageNotFound)
		}
		m.ReplyMessage = parent.ToReplyMessage()
	}
	for _, fr := range fm.Reactions {
		u, ok := t.Users[fr.User]
		if !ok {
			return domain.Message{}, fmt.Errorf("reaction by unknown user %q", fr.User)
		}
		m.Reactions = append(m.Reactions, domain.Reaction{
			ID:        uuid.NewString(),
			User:      u,
			CreatedAt: at,
			Emoji:     fr.Emoji,
			Status:    domain.ReactionSent,
		})
	}
	for _, fa := range fm.Attachments {
		typ := domain.AttachmentType(strings.ToLower(fa.Type))
		if typ == "" {
			typ = domain.AttachmentImage
		}
		thumb := fa.Thumbnail
		if thumb == "" {
			thumb = fa.URL
		}
		m.Attachments = append(m.Attachments, domain.Attachment{ID: uuid.NewString(), Thumbnail: thumb, Full: fa.URL, Type: typ})
	}
	if fm.Recording != nil {
		m.Recording = &domain.Recording{Duration: fm.Recording.Duration, URL: fm.Recording.URL, WaveformSamples: fm.Recording.Waveform}
	}
	if m.Text == "" && len(m.Attachments) == 0 && m.Recording == nil && !m.IsDeleted {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	return m, nil
}

func parseStatus(s string) (domain.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return domain.StatusNone, nil
	case "sending":
		return domain.StatusSending, nil
	case "sent":
		return domain.StatusSent, nil
	case "received":
		return domain.StatusReceived, nil
	case "read":
		return domain.StatusRead, nil
	case "error":
		return domain.StatusError, nil
	default:
		return 0, fmt.Errorf("unknown status %q", s)
	}
}
