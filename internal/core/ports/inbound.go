package ports

import (
	"context"
	"time"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// InboundMessage is the transport-agnostic view of one webhook message event.
// Exactly one of the content fields is populated depending on Type.
type InboundMessage struct {
	MessageID    string
	From         string // raw sender id as delivered by the platform
	Timestamp    time.Time
	Type         string // text | interactive | button | image
	Text         string // typed text body
	ButtonID     string // interactive button reply id
	ListID       string // interactive list reply id
	QuickReplyID string // legacy quick-reply payload id
	ImageID      string // platform media id of an attached image
	ImageMime    string
}

// Content extracts the effective message text with fixed precedence: typed
// body, button selection, list selection, quick-reply payload, else empty.
// Image-only messages yield "" and are handled by image-aware steps.
func (m InboundMessage) Content() string {
	switch {
	case m.Text != "":
		return m.Text
	case m.ButtonID != "":
		return m.ButtonID
	case m.ListID != "":
		return m.ListID
	case m.QuickReplyID != "":
		return m.QuickReplyID
	}
	return ""
}

// HasImage reports whether the message carries an image attachment.
func (m InboundMessage) HasImage() bool {
	return m.ImageID != ""
}

// FlowEngine advances one role's conversation state machine by a single
// inbound message. Implementations mutate the session and emit outbound
// messages; they never return user-input problems as errors.
type FlowEngine interface {
	Handle(ctx context.Context, user *domain.User, session *domain.Session, msg InboundMessage) error
}

// EventSink is the interface the webhook handler uses to hand accepted events
// to the processing pipeline.
type EventSink interface {
	Enqueue(msg InboundMessage)
}
